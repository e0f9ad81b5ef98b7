package student

import (
	"context"

	"github.com/shulehub/shule/core"
)

type ServiceInterface interface {
	GetByRegNo(ctx context.Context, regNo int) (Student, error)
	GetByEmail(ctx context.Context, email string) (Student, error)
	Filter(ctx context.Context, filter QueryFilter) ([]Student, error)
	Update(ctx context.Context, regNo int, us UpdateStudent) (Student, error)
	Delete(ctx context.Context, regNos ...int) error
	Watch(ctx context.Context, filter QueryFilter) (<-chan []Student, func(), error)
}

type Service struct {
	repo Repository
}

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) GetByRegNo(ctx context.Context, regNo int) (Student, error) {
	return svc.repo.GetStudentByRegNo(ctx, regNo)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Student, error) {
	return svc.repo.GetStudentByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Student, error) {
	return svc.repo.FilterStudents(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, regNo int, us UpdateStudent) (Student, error) {
	s, err := svc.repo.GetStudentByRegNo(ctx, regNo)
	if err != nil {
		return Student{}, err
	}
	if us.Name != "" {
		s.Name = us.Name
	}
	if us.Gender != "" {
		s.Gender = us.Gender
	}
	if us.FatherName != "" {
		s.FatherName = us.FatherName
	}
	if us.Cast != "" {
		s.Cast = us.Cast
	}
	if us.Occupation != "" {
		s.Occupation = us.Occupation
	}
	if us.Residence != "" {
		s.Residence = us.Residence
	}
	if us.Class != "" {
		s.Class = us.Class
	}
	if us.Email != "" {
		s.Email = us.Email
	}
	if us.Remarks != "" {
		s.Remarks = us.Remarks
	}
	return svc.repo.UpdateStudent(ctx, s)
}

func (svc *Service) Delete(ctx context.Context, regNos ...int) error {
	return svc.repo.DeleteStudentsByRegNo(ctx, regNos...)
}

func (svc *Service) Watch(ctx context.Context, filter QueryFilter) (<-chan []Student, func(), error) {
	return svc.repo.WatchStudents(ctx, filter)
}
