package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/shulehub/shule/core/marks"
)

type marksRepository struct {
	db *DB
}

var _ marks.Repository = (*marksRepository)(nil)

func NewMarksRepository(db *DB) marks.Repository {
	return &marksRepository{db: db}
}

func (repo *marksRepository) GetSheet(_ context.Context, regNo int) (marks.Sheet, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sheet, ok := repo.db.sheets[regNo]; ok {
		return copySheet(*sheet), nil
	}
	return marks.Sheet{}, marks.ErrNotFound
}

func (repo *marksRepository) MergeTerm(_ context.Context, regNo int, class, term string, tm marks.TermMarks) (marks.Sheet, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sheet, ok := repo.db.sheets[regNo]
	if !ok {
		sheet = &marks.Sheet{RegNo: regNo, Class: class, Terms: make(map[string]marks.TermMarks)}
		repo.db.sheets[regNo] = sheet
	}
	if sheet.Terms[term] == nil {
		sheet.Terms[term] = make(marks.TermMarks, len(tm))
	}
	for subj, scores := range tm {
		sheet.Terms[term][subj] = append([]int(nil), scores...)
	}

	repo.db.history = append(repo.db.history, marks.HistoryEntry{
		RegNo:      regNo,
		Term:       term,
		Marks:      copyTermMarks(tm),
		RecordedAt: time.Now().UTC(),
	})
	repo.db.broadcast()
	return copySheet(*sheet), nil
}

func (repo *marksRepository) FilterSheetsByClass(_ context.Context, class string) ([]marks.Sheet, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	matches := make([]marks.Sheet, 0)
	for _, sheet := range repo.db.sheets {
		if sheet.Class == class {
			matches = append(matches, copySheet(*sheet))
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].RegNo < matches[j].RegNo })
	return matches, nil
}

func (repo *marksRepository) HistoryForStudent(_ context.Context, regNo int) ([]marks.HistoryEntry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := make([]marks.HistoryEntry, 0)
	for _, e := range repo.db.history {
		if e.RegNo == regNo {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (repo *marksRepository) DeleteSheet(_ context.Context, regNo int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.sheets, regNo)
	repo.db.broadcast()
	return nil
}

func copySheet(s marks.Sheet) marks.Sheet {
	terms := make(map[string]marks.TermMarks, len(s.Terms))
	for term, tm := range s.Terms {
		terms[term] = copyTermMarks(tm)
	}
	s.Terms = terms
	return s
}

func copyTermMarks(tm marks.TermMarks) marks.TermMarks {
	cp := make(marks.TermMarks, len(tm))
	for subj, scores := range tm {
		cp[subj] = append([]int(nil), scores...)
	}
	return cp
}
