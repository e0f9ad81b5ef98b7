package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shulehub/shule/core/provision"
)

var _ provision.Counter = (*DB)(nil)

// NextID atomically increments and returns the named counter. The counter
// document is created on first use, so the first id issued is 1.
func (db *DB) NextID(ctx context.Context, name string) (int, error) {
	var doc struct {
		Seq int `bson:"seq"`
	}
	err := db.collection(colCounters).FindOneAndUpdate(
		ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, errors.Wrapf(err, "incrementing %s counter", name)
	}
	return doc.Seq, nil
}
