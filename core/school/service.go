package school

import (
	"context"
	"strings"

	"github.com/shulehub/shule/core"
)

type ServiceInterface interface {
	AddClass(ctx context.Context, nc NewClass) (Class, error)
	Classes(ctx context.Context) ([]Class, error)
	RemoveClass(ctx context.Context, name string) error
	WatchClasses(ctx context.Context) (<-chan []Class, func(), error)
	SyllabusFor(ctx context.Context, class string) (Syllabus, error)
	SetOutline(ctx context.Context, class, subject, outline string) (Syllabus, error)
	RemoveOutline(ctx context.Context, class, subject string) error
	TimetableFor(ctx context.Context, class string) ([]TimetableEntry, error)
	SetTimetable(ctx context.Context, e TimetableEntry) (TimetableEntry, error)
}

type Service struct {
	repo Repository
}

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) AddClass(ctx context.Context, nc NewClass) (Class, error) {
	return svc.repo.CreateClass(ctx, Class{Name: nc.Name})
}

func (svc *Service) Classes(ctx context.Context) ([]Class, error) {
	return svc.repo.QueryAllClasses(ctx)
}

func (svc *Service) RemoveClass(ctx context.Context, name string) error {
	return svc.repo.DeleteClass(ctx, core.CleanString(name))
}

func (svc *Service) WatchClasses(ctx context.Context) (<-chan []Class, func(), error) {
	return svc.repo.WatchClasses(ctx)
}

// syllabi are keyed by lowercased class name
func syllabusKey(class string) string {
	return strings.ToLower(core.CleanString(class))
}

func (svc *Service) SyllabusFor(ctx context.Context, class string) (Syllabus, error) {
	return svc.repo.GetSyllabus(ctx, syllabusKey(class))
}

func (svc *Service) SetOutline(ctx context.Context, class, subject, outline string) (Syllabus, error) {
	return svc.repo.SetSyllabus(ctx, syllabusKey(class), core.CleanString(subject), core.CleanString(outline))
}

func (svc *Service) RemoveOutline(ctx context.Context, class, subject string) error {
	return svc.repo.DeleteSyllabusSubject(ctx, syllabusKey(class), core.CleanString(subject))
}

func (svc *Service) TimetableFor(ctx context.Context, class string) ([]TimetableEntry, error) {
	return svc.repo.GetTimetable(ctx, core.CleanString(class))
}

func (svc *Service) SetTimetable(ctx context.Context, e TimetableEntry) (TimetableEntry, error) {
	e.Class = core.CleanString(e.Class)
	e.ID = e.Class + "-" + strings.ToLower(core.CleanString(e.Day))
	return svc.repo.SetTimetableEntry(ctx, e)
}
