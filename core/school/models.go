// Package school holds the shared school structure: classes, per-class
// syllabi and the weekly timetable.
package school

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
)

var (
	ErrClassNotFound    = errors.New("class not found")
	ErrSyllabusNotFound = errors.New("syllabus not found")
)

type Class struct {
	Name string `json:"name" bson:"_id"`
}

type NewClass struct {
	Name string `json:"name" validate:"required"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

// Syllabus is the per-class subject outline, keyed by lowercased class name.
type Syllabus struct {
	Class    string            `json:"class" bson:"_id"`
	Outlines map[string]string `json:"outlines" bson:"outlines"` // subject -> outline
}

// TimetableEntry is one class's schedule for one weekday.
type TimetableEntry struct {
	ID      string   `json:"id" bson:"_id"` // "<class>-<day>"
	Class   string   `json:"class" bson:"class"`
	Day     string   `json:"day" bson:"day"`
	Periods []Period `json:"periods" bson:"periods"`
}

type Period struct {
	Subject string `json:"subject" bson:"subject"`
	Time    string `json:"time" bson:"time"` // "09:00-09:40"
}

type Repository interface {
	CreateClass(ctx context.Context, c Class) (Class, error)
	QueryAllClasses(ctx context.Context) ([]Class, error)
	DeleteClass(ctx context.Context, name string) error
	// WatchClasses streams a fresh class list on every change, starting with
	// the current one.
	WatchClasses(ctx context.Context) (snapshots <-chan []Class, stop func(), err error)

	GetSyllabus(ctx context.Context, class string) (Syllabus, error)
	// SetSyllabus merge-writes one subject outline into a class syllabus.
	SetSyllabus(ctx context.Context, class, subject, outline string) (Syllabus, error)
	DeleteSyllabusSubject(ctx context.Context, class, subject string) error

	GetTimetable(ctx context.Context, class string) ([]TimetableEntry, error)
	SetTimetableEntry(ctx context.Context, e TimetableEntry) (TimetableEntry, error)
}
