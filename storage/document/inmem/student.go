package inmem

import (
	"context"
	"sort"

	"github.com/shulehub/shule/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

// filter must be called with at least a read lock held.
func (repo *studentRepository) filter(f student.QueryFilter) []student.Student {
	matches := make([]student.Student, 0, len(repo.db.students))
	for _, s := range repo.db.students {
		if f.Class != "" && s.Class != f.Class {
			continue
		}
		if f.Email != "" && s.Email != f.Email {
			continue
		}
		matches = append(matches, *s)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].RegNo < matches[j].RegNo })
	return matches
}

func (repo *studentRepository) CreateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.students[s.RegNo] = &s
	repo.db.broadcast()
	return s, nil
}

func (repo *studentRepository) GetStudentByRegNo(_ context.Context, regNo int) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.students[regNo]; ok {
		return *s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByEmail(_ context.Context, email string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, s := range repo.db.students {
		if s.Email == email {
			return *s, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) FilterStudents(_ context.Context, filter student.QueryFilter) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.filter(filter), nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.students[s.RegNo]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.students[s.RegNo] = &s
	repo.db.broadcast()
	return s, nil
}

func (repo *studentRepository) DeleteStudentsByRegNo(_ context.Context, regNos ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, regNo := range regNos {
		delete(repo.db.students, regNo)
	}
	repo.db.broadcast()
	return nil
}

func (repo *studentRepository) WatchStudents(ctx context.Context, filter student.QueryFilter) (<-chan []student.Student, func(), error) {
	signal, cancel := repo.db.subscribe()
	out := make(chan []student.Student, 1)

	snapshot := func() []student.Student {
		repo.db.RLock()
		defer repo.db.RUnlock()
		return repo.filter(filter)
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
