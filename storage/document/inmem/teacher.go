package inmem

import (
	"context"
	"sort"

	"github.com/shulehub/shule/core/teacher"
)

type teacherRepository struct {
	db *DB
}

var _ teacher.Repository = (*teacherRepository)(nil)

func NewTeacherRepository(db *DB) teacher.Repository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) CreateTeacher(_ context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.teachers[t.ID] = &t
	repo.db.broadcast()
	return t, nil
}

func (repo *teacherRepository) GetTeacherByID(_ context.Context, id int) (teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.teachers[id]; ok {
		return *t, nil
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) GetTeacherByEmail(_ context.Context, email string) (teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, t := range repo.db.teachers {
		if t.Email == email {
			return *t, nil
		}
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) FilterTeachers(_ context.Context, filter teacher.QueryFilter) ([]teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	matches := make([]teacher.Teacher, 0, len(repo.db.teachers))
	for _, t := range repo.db.teachers {
		if filter.Class != "" && t.Class != filter.Class {
			continue
		}
		if filter.Email != "" && t.Email != filter.Email {
			continue
		}
		matches = append(matches, *t)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

func (repo *teacherRepository) UpdateTeacher(_ context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.teachers[t.ID]; !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	repo.db.teachers[t.ID] = &t
	repo.db.broadcast()
	return t, nil
}

func (repo *teacherRepository) DeleteTeachersByID(_ context.Context, ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.teachers, id)
	}
	repo.db.broadcast()
	return nil
}
