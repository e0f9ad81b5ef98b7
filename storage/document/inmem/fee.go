package inmem

import (
	"context"
	"sort"

	"github.com/shulehub/shule/core/fee"
)

type feeRepository struct {
	db *DB
}

var _ fee.Repository = (*feeRepository)(nil)

func NewFeeRepository(db *DB) fee.Repository {
	return &feeRepository{db: db}
}

func (repo *feeRepository) CreateFee(_ context.Context, f fee.Fee) (fee.Fee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.fees[f.ID] = &f
	repo.db.broadcast()
	return f, nil
}

func (repo *feeRepository) GetFeeByID(_ context.Context, id string) (fee.Fee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if f, ok := repo.db.fees[id]; ok {
		return *f, nil
	}
	return fee.Fee{}, fee.ErrNotFound
}

func (repo *feeRepository) FilterFees(_ context.Context, filter fee.QueryFilter) ([]fee.Fee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	matches := make([]fee.Fee, 0)
	for _, f := range repo.db.fees {
		if filter.RegNo != 0 && f.RegNo != filter.RegNo {
			continue
		}
		if filter.Class != "" && f.Class != filter.Class {
			continue
		}
		if filter.Month != "" && f.Month != filter.Month {
			continue
		}
		matches = append(matches, *f)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches, nil
}

func (repo *feeRepository) UpdateFee(_ context.Context, f fee.Fee) (fee.Fee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.fees[f.ID]; !ok {
		return fee.Fee{}, fee.ErrNotFound
	}
	repo.db.fees[f.ID] = &f
	repo.db.broadcast()
	return f, nil
}

func (repo *feeRepository) DeleteFeesByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.fees, id)
	}
	repo.db.broadcast()
	return nil
}
