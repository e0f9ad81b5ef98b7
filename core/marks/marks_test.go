package marks

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
)

type fakeRepo struct {
	merged struct {
		regNo int
		class string
		term  string
		tm    TermMarks
	}
	mergeCalls int
}

func (r *fakeRepo) GetSheet(context.Context, int) (Sheet, error) { return Sheet{}, ErrNotFound }
func (r *fakeRepo) MergeTerm(_ context.Context, regNo int, class, term string, tm TermMarks) (Sheet, error) {
	r.mergeCalls++
	r.merged.regNo, r.merged.class, r.merged.term, r.merged.tm = regNo, class, term, tm
	return Sheet{RegNo: regNo, Class: class, Terms: map[string]TermMarks{term: tm}}, nil
}
func (r *fakeRepo) FilterSheetsByClass(context.Context, string) ([]Sheet, error) { return nil, nil }
func (r *fakeRepo) HistoryForStudent(context.Context, int) ([]HistoryEntry, error) {
	return nil, nil
}
func (r *fakeRepo) DeleteSheet(context.Context, int) error { return nil }

func TestSubjectsForClass(t *testing.T) {
	tests := []struct {
		class string
		count int
	}{
		{class: "Nursery", count: 4},
		{class: "KG", count: 4},
		{class: "Prep", count: 5},
		{class: "1st", count: 5},
		{class: "2nd", count: 5},
		{class: "3rd", count: 6},
		{class: "4th", count: 6},
		{class: "5th", count: 7},
		{class: "6th", count: 7},
		{class: "7th", count: 8},
		{class: "8th", count: 8},
		{class: "9th", count: 0}, // not offered
		{class: "", count: 0},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			if got := len(SubjectsForClass(tt.class)); got != tt.count {
				t.Errorf("SubjectsForClass(%q) has %d subjects; want %d", tt.class, got, tt.count)
			}
		})
	}
}

func TestSheet_Summarize(t *testing.T) {
	sheet := Sheet{
		RegNo: 1,
		Class: "5th",
		Terms: map[string]TermMarks{
			"1st Term": {
				"English": {40, 35}, // 75
				"Urdu":    {20},     // 20
				"Math":    {50, 50}, // 100
			},
		},
	}

	sum, ok := sheet.Summarize("1st Term")
	if !ok {
		t.Fatal("Summarize() reported no marks for an existing term")
	}
	if sum.Subjects != 3 {
		t.Errorf("Subjects = %d; want 3", sum.Subjects)
	}
	if sum.Total != 195 {
		t.Errorf("Total = %d; want 195", sum.Total)
	}
	if sum.Average != 65 {
		t.Errorf("Average = %v; want 65", sum.Average)
	}
	if sum.Min != 20 || sum.Max != 100 {
		t.Errorf("Min/Max = %d/%d; want 20/100", sum.Min, sum.Max)
	}

	if _, ok = sheet.Summarize("2nd Term"); ok {
		t.Error("Summarize() reported marks for a missing term")
	}
}

func TestService_SubmitTerm(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		class   string
		term    string
		tm      TermMarks
		wantErr error
	}{
		{
			name:  "valid submission",
			class: "5th", term: "1st Term",
			tm: TermMarks{"English": {40}, "Math": {50}},
		},
		{
			name:  "term name with punctuation rejected",
			class: "5th", term: "1st; DROP",
			tm:      TermMarks{"English": {40}},
			wantErr: ErrInvalidTerm,
		},
		{
			name:  "empty term rejected",
			class: "5th", term: "",
			tm:      TermMarks{"English": {40}},
			wantErr: ErrInvalidTerm,
		},
		{
			name:  "subject outside curriculum rejected",
			class: "Nursery", term: "1st Term",
			tm:      TermMarks{"Computer": {40}},
			wantErr: ErrUnknownSubject,
		},
		{
			name:  "negative score rejected",
			class: "5th", term: "1st Term",
			tm:      TermMarks{"English": {40, -1}},
			wantErr: ErrInvalidScore,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}
			svc := NewService(repo)

			_, err := svc.SubmitTerm(ctx, 1, tt.class, tt.term, tt.tm)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SubmitTerm() error = %v; want %v", err, tt.wantErr)
				}
				var vErr *core.ValidationError
				if !errors.As(err, &vErr) {
					t.Errorf("SubmitTerm() error is not a validation error: %v", err)
				}
				if repo.mergeCalls != 0 {
					t.Error("invalid submission reached the repository")
				}
				return
			}
			if err != nil {
				t.Fatalf("SubmitTerm() failed: %v", err)
			}
			if repo.mergeCalls != 1 {
				t.Fatalf("mergeCalls = %d; want 1", repo.mergeCalls)
			}
			if repo.merged.class != tt.class || repo.merged.term != tt.term {
				t.Errorf("merged %s/%s; want %s/%s", repo.merged.class, repo.merged.term, tt.class, tt.term)
			}
		})
	}
}
