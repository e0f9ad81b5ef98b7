package student

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
)

var ErrNotFound = errors.New("student not found")

// Student is an admitted student's domain record, keyed by a sequential
// registration number issued at provisioning time.
type Student struct {
	RegNo         int    `json:"reg_no" bson:"_id"`
	AdmissionDate string `json:"admission_date" bson:"admissionDate"` // YYYY-MM-DD
	Name          string `json:"name" bson:"name"`
	DOB           string `json:"dob" bson:"dob"` // YYYY-MM-DD
	Gender        string `json:"gender" bson:"gender"`
	FatherName    string `json:"father_name" bson:"fatherName"`
	Cast          string `json:"cast" bson:"cast"`
	Occupation    string `json:"occupation" bson:"occupation"`
	Residence     string `json:"residence" bson:"residence"`
	Class         string `json:"class" bson:"class"`
	Email         string `json:"email" bson:"email"`
	Remarks       string `json:"remarks" bson:"remarks"`
}

// NewStudent contains information needed to admit a new Student. The
// registration number is store-issued, never caller-provided.
type NewStudent struct {
	AdmissionDate string `json:"admission_date" validate:"required,datetime=2006-01-02"`
	Name          string `json:"name" validate:"required"`
	DOB           string `json:"dob" validate:"required,datetime=2006-01-02"`
	Gender        string `json:"gender" validate:"required"`
	FatherName    string `json:"father_name" validate:"required"`
	Cast          string `json:"cast" validate:"required"`
	Occupation    string `json:"occupation" validate:"required"`
	Residence     string `json:"residence" validate:"required"`
	Class         string `json:"class" validate:"required"`
	Email         string `json:"email" validate:"omitempty,email"`
	Remarks       string `json:"remarks"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.FatherName = core.CleanString(ns.FatherName)
	ns.Class = core.CleanString(ns.Class)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return validate.Struct(ns)
}

// UpdateStudent defines what may be modified on an existing record. Zero
// fields keep their stored values.
type UpdateStudent struct {
	Name       string `json:"name"`
	Gender     string `json:"gender"`
	FatherName string `json:"father_name"`
	Cast       string `json:"cast"`
	Occupation string `json:"occupation"`
	Residence  string `json:"residence"`
	Class      string `json:"class"`
	Email      string `json:"email" validate:"omitempty,email"`
	Remarks    string `json:"remarks"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.Email = core.CleanString(us.Email, true /* lower */)
	return validate.Struct(us)
}

// QueryFilter applies AND on its non-zero fields; equality matches only,
// mirroring the document store's filter surface.
type QueryFilter struct {
	Class string `query:"class"`
	Email string `query:"email"`
}

func (qf *QueryFilter) IsEmpty() bool { return qf.Class == "" && qf.Email == "" }

type Repository interface {
	CreateStudent(ctx context.Context, s Student) (Student, error)
	GetStudentByRegNo(ctx context.Context, regNo int) (Student, error)
	GetStudentByEmail(ctx context.Context, email string) (Student, error)
	FilterStudents(ctx context.Context, filter QueryFilter) ([]Student, error)
	UpdateStudent(ctx context.Context, s Student) (Student, error)
	DeleteStudentsByRegNo(ctx context.Context, regNos ...int) error
	// WatchStudents streams a fresh filtered snapshot on every change to the
	// collection, starting with the current one. stop releases the watch.
	WatchStudents(ctx context.Context, filter QueryFilter) (snapshots <-chan []Student, stop func(), err error)
}
