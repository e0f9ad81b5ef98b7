package marks

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("marks sheet not found")

// TermMarks maps a subject to its scores. Most subjects carry a single
// score; Computer carries two (class and lab).
type TermMarks map[string][]int

// Sheet is a student's marks document, keyed by registration number. Terms
// are merge-written: submitting a term updates that term's subjects without
// touching other terms.
type Sheet struct {
	RegNo int                  `json:"reg_no" bson:"_id"`
	Class string               `json:"class" bson:"class"`
	Terms map[string]TermMarks `json:"terms" bson:"terms"`
}

// HistoryEntry is an append-only snapshot of a term submission.
type HistoryEntry struct {
	RegNo      int       `json:"reg_no" bson:"regNo"`
	Term       string    `json:"term" bson:"term"`
	Marks      TermMarks `json:"marks" bson:"marks"`
	RecordedAt time.Time `json:"recorded_at" bson:"recordedAt"` // UTC
}

// Summary aggregates one term of a sheet.
type Summary struct {
	Term     string  `json:"term"`
	Subjects int     `json:"subjects"`
	Total    int     `json:"total"`
	Average  float64 `json:"average"`
	Min      int     `json:"min"`
	Max      int     `json:"max"`
}

// SubjectsForClass is the fixed class curriculum.
func SubjectsForClass(class string) []string {
	switch class {
	case "Nursery", "KG":
		return []string{"English", "Urdu", "Math", "Nazra-e-Quran"}
	case "Prep":
		return []string{"English", "Urdu", "Math", "Nazra-e-Quran", "General Knowledge"}
	case "1st", "2nd":
		return []string{"English", "Urdu", "Math", "General Knowledge", "Islamyat"}
	case "3rd", "4th":
		return []string{"English", "Urdu", "Math", "General Knowledge", "Islamyat", "Computer"}
	case "5th", "6th":
		return []string{"English", "Urdu", "Math", "General Knowledge", "Social Study", "Islamyat", "Computer"}
	case "7th", "8th":
		return []string{"English", "Urdu", "Math", "General Knowledge", "Social Study", "Islamyat", "Computer", "Quran"}
	}
	return nil
}

// Summarize computes total/average/min/max over a term's per-subject totals.
// ok is false when the sheet has no marks for the term.
func (s Sheet) Summarize(term string) (sum Summary, ok bool) {
	tm, found := s.Terms[term]
	if !found || len(tm) == 0 {
		return Summary{}, false
	}

	sum.Term = term
	sum.Min = -1
	for _, scores := range tm {
		var subjTotal int
		for _, score := range scores {
			subjTotal += score
		}
		sum.Subjects++
		sum.Total += subjTotal
		if subjTotal > sum.Max {
			sum.Max = subjTotal
		}
		if sum.Min < 0 || subjTotal < sum.Min {
			sum.Min = subjTotal
		}
	}
	sum.Average = float64(sum.Total) / float64(sum.Subjects)
	return sum, true
}

type Repository interface {
	GetSheet(ctx context.Context, regNo int) (Sheet, error)
	// MergeTerm merge-writes one term of a student's sheet, creating the
	// sheet if absent, and appends a history snapshot.
	MergeTerm(ctx context.Context, regNo int, class, term string, tm TermMarks) (Sheet, error)
	FilterSheetsByClass(ctx context.Context, class string) ([]Sheet, error)
	HistoryForStudent(ctx context.Context, regNo int) ([]HistoryEntry, error)
	DeleteSheet(ctx context.Context, regNo int) error
}
