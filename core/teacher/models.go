package teacher

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
)

var ErrNotFound = errors.New("teacher not found")

// Teacher is a staff domain record, keyed by a sequential id issued at
// provisioning time. A teacher is assigned at most one class.
type Teacher struct {
	ID    int    `json:"id" bson:"_id"`
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
	Class string `json:"class" bson:"class"`
}

// NewTeacher contains information needed to add a new Teacher. Class may be
// empty when the teacher is not yet assigned.
type NewTeacher struct {
	Name  string `json:"name" validate:"required,min=4"`
	Email string `json:"email" validate:"omitempty,email"`
	Class string `json:"class"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Class = core.CleanString(nt.Class)
	return validate.Struct(nt)
}

type QueryFilter struct {
	Class string `query:"class"`
	Email string `query:"email"`
}

func (qf *QueryFilter) IsEmpty() bool { return qf.Class == "" && qf.Email == "" }

type Repository interface {
	CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
	GetTeacherByID(ctx context.Context, id int) (Teacher, error)
	GetTeacherByEmail(ctx context.Context, email string) (Teacher, error)
	FilterTeachers(ctx context.Context, filter QueryFilter) ([]Teacher, error)
	UpdateTeacher(ctx context.Context, t Teacher) (Teacher, error)
	DeleteTeachersByID(ctx context.Context, ids ...int) error
}

type ServiceInterface interface {
	GetByID(ctx context.Context, id int) (Teacher, error)
	GetByEmail(ctx context.Context, email string) (Teacher, error)
	Filter(ctx context.Context, filter QueryFilter) ([]Teacher, error)
	AssignClass(ctx context.Context, id int, class string) (Teacher, error)
	Delete(ctx context.Context, ids ...int) error
}

type Service struct {
	repo Repository
}

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) GetByID(ctx context.Context, id int) (Teacher, error) {
	return svc.repo.GetTeacherByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Teacher, error) {
	return svc.repo.GetTeacherByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Teacher, error) {
	return svc.repo.FilterTeachers(ctx, filter)
}

func (svc *Service) AssignClass(ctx context.Context, id int, class string) (Teacher, error) {
	t, err := svc.repo.GetTeacherByID(ctx, id)
	if err != nil {
		return Teacher{}, err
	}
	t.Class = core.CleanString(class)
	return svc.repo.UpdateTeacher(ctx, t)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteTeachersByID(ctx, ids...)
}
