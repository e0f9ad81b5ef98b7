package marks

import (
	"context"
	"regexp"

	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
)

var (
	ErrUnknownSubject = errors.New("subject not in class curriculum")
	ErrInvalidScore   = errors.New("score must be a non-negative number")

	termRegex = regexp.MustCompile(`^[\w\s-]+$`)

	ErrInvalidTerm = errors.New("invalid term name")
)

type ServiceInterface interface {
	SheetFor(ctx context.Context, regNo int) (Sheet, error)
	SubmitTerm(ctx context.Context, regNo int, class, term string, tm TermMarks) (Sheet, error)
	SheetsByClass(ctx context.Context, class string) ([]Sheet, error)
	History(ctx context.Context, regNo int) ([]HistoryEntry, error)
	Summary(ctx context.Context, regNo int, term string) (Summary, error)
}

type Service struct {
	repo Repository
}

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) SheetFor(ctx context.Context, regNo int) (Sheet, error) {
	return svc.repo.GetSheet(ctx, regNo)
}

// SubmitTerm validates a term submission against the class curriculum and
// merge-writes it.
func (svc *Service) SubmitTerm(ctx context.Context, regNo int, class, term string, tm TermMarks) (Sheet, error) {
	term = core.CleanString(term)
	if term == "" || !termRegex.MatchString(term) {
		return Sheet{}, core.NewValidationError(ErrInvalidTerm, core.FieldError{Field: "term", Error: ErrInvalidTerm.Error()})
	}

	curriculum := SubjectsForClass(class)
	allowed := make(map[string]bool, len(curriculum))
	for _, subj := range curriculum {
		allowed[subj] = true
	}
	for subj, scores := range tm {
		if !allowed[subj] {
			return Sheet{}, core.NewValidationError(ErrUnknownSubject, core.FieldError{Field: subj, Error: ErrUnknownSubject.Error()})
		}
		for _, score := range scores {
			if score < 0 {
				return Sheet{}, core.NewValidationError(ErrInvalidScore, core.FieldError{Field: subj, Error: ErrInvalidScore.Error()})
			}
		}
	}

	return svc.repo.MergeTerm(ctx, regNo, class, term, tm)
}

func (svc *Service) SheetsByClass(ctx context.Context, class string) ([]Sheet, error) {
	return svc.repo.FilterSheetsByClass(ctx, class)
}

func (svc *Service) History(ctx context.Context, regNo int) ([]HistoryEntry, error) {
	return svc.repo.HistoryForStudent(ctx, regNo)
}

func (svc *Service) Summary(ctx context.Context, regNo int, term string) (Summary, error) {
	sheet, err := svc.repo.GetSheet(ctx, regNo)
	if err != nil {
		return Summary{}, err
	}
	sum, ok := sheet.Summarize(term)
	if !ok {
		return Summary{}, errors.Wrapf(ErrNotFound, "term %q", term)
	}
	return sum, nil
}
