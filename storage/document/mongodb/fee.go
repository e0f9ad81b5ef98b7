package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shulehub/shule/core/fee"
)

var _ fee.Repository = (*feeRepository)(nil)

type feeRepository struct {
	db *DB
}

func NewFeeRepository(db *DB) fee.Repository {
	return &feeRepository{db: db}
}

func (repo *feeRepository) col() *mongo.Collection { return repo.db.collection(colFees) }

func (repo *feeRepository) CreateFee(ctx context.Context, f fee.Fee) (fee.Fee, error) {
	if _, err := repo.col().InsertOne(ctx, f); err != nil {
		return fee.Fee{}, errors.Wrap(err, "creating fee")
	}
	return f, nil
}

func (repo *feeRepository) GetFeeByID(ctx context.Context, id string) (fee.Fee, error) {
	var f fee.Fee
	err := repo.col().FindOne(ctx, bson.M{"_id": id}).Decode(&f)
	if err == mongo.ErrNoDocuments {
		return fee.Fee{}, fee.ErrNotFound
	}
	if err != nil {
		return fee.Fee{}, errors.Wrap(err, "getting fee")
	}
	return f, nil
}

func (repo *feeRepository) FilterFees(ctx context.Context, filter fee.QueryFilter) ([]fee.Fee, error) {
	query := bson.M{}
	if filter.RegNo != 0 {
		query["regNo"] = filter.RegNo
	}
	if filter.Class != "" {
		query["class"] = filter.Class
	}
	if filter.Month != "" {
		query["month"] = filter.Month
	}
	cur, err := repo.col().Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying fees")
	}
	var fees []fee.Fee
	if err = cur.All(ctx, &fees); err != nil {
		return nil, errors.Wrap(err, "decoding fees")
	}
	return fees, nil
}

func (repo *feeRepository) UpdateFee(ctx context.Context, f fee.Fee) (fee.Fee, error) {
	res, err := repo.col().ReplaceOne(ctx, bson.M{"_id": f.ID}, f)
	if err != nil {
		return fee.Fee{}, errors.Wrap(err, "updating fee")
	}
	if res.MatchedCount == 0 {
		return fee.Fee{}, fee.ErrNotFound
	}
	return f, nil
}

func (repo *feeRepository) DeleteFeesByID(ctx context.Context, ids ...string) error {
	_, err := repo.col().DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return errors.Wrap(err, "deleting fees")
}
