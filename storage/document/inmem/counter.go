package inmem

import (
	"context"

	"github.com/shulehub/shule/core/provision"
)

type counterRepository struct {
	db *DB
}

var _ provision.Counter = (*counterRepository)(nil)

func NewCounterRepository(db *DB) provision.Counter {
	return &counterRepository{db: db}
}

func (repo *counterRepository) NextID(_ context.Context, name string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.counters[name]++
	return repo.db.counters[name], nil
}
