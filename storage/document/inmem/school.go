package inmem

import (
	"context"
	"sort"

	"github.com/shulehub/shule/core/school"
)

type schoolRepository struct {
	db *DB
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db}
}

// classList must be called with at least a read lock held.
func (repo *schoolRepository) classList() []school.Class {
	classes := make([]school.Class, 0, len(repo.db.classes))
	for name := range repo.db.classes {
		classes = append(classes, school.Class{Name: name})
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })
	return classes
}

func (repo *schoolRepository) CreateClass(_ context.Context, c school.Class) (school.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.classes[c.Name] = struct{}{}
	repo.db.broadcast()
	return c, nil
}

func (repo *schoolRepository) QueryAllClasses(_ context.Context) ([]school.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.classList(), nil
}

func (repo *schoolRepository) DeleteClass(_ context.Context, name string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	delete(repo.db.classes, name)
	repo.db.broadcast()
	return nil
}

func (repo *schoolRepository) WatchClasses(ctx context.Context) (<-chan []school.Class, func(), error) {
	signal, cancel := repo.db.subscribe()
	out := make(chan []school.Class, 1)

	snapshot := func() []school.Class {
		repo.db.RLock()
		defer repo.db.RUnlock()
		return repo.classList()
	}
	out <- snapshot()

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-signal:
				if !ok {
					return
				}
				select {
				case out <- snapshot():
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, cancel, nil
}

func (repo *schoolRepository) GetSyllabus(_ context.Context, class string) (school.Syllabus, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	outlines, ok := repo.db.syllabi[class]
	if !ok {
		return school.Syllabus{}, school.ErrSyllabusNotFound
	}
	cp := make(map[string]string, len(outlines))
	for subj, outline := range outlines {
		cp[subj] = outline
	}
	return school.Syllabus{Class: class, Outlines: cp}, nil
}

func (repo *schoolRepository) SetSyllabus(_ context.Context, class, subject, outline string) (school.Syllabus, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.db.syllabi[class] == nil {
		repo.db.syllabi[class] = make(map[string]string)
	}
	repo.db.syllabi[class][subject] = outline
	repo.db.broadcast()

	cp := make(map[string]string, len(repo.db.syllabi[class]))
	for subj, o := range repo.db.syllabi[class] {
		cp[subj] = o
	}
	return school.Syllabus{Class: class, Outlines: cp}, nil
}

func (repo *schoolRepository) DeleteSyllabusSubject(_ context.Context, class, subject string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if outlines, ok := repo.db.syllabi[class]; ok {
		delete(outlines, subject)
		repo.db.broadcast()
	}
	return nil
}

func (repo *schoolRepository) GetTimetable(_ context.Context, class string) ([]school.TimetableEntry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := make([]school.TimetableEntry, 0)
	for _, e := range repo.db.timetable {
		if e.Class == class {
			entries = append(entries, *e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (repo *schoolRepository) SetTimetableEntry(_ context.Context, e school.TimetableEntry) (school.TimetableEntry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.timetable[e.ID] = &e
	repo.db.broadcast()
	return e, nil
}
