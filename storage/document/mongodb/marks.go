package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shulehub/shule/core/marks"
)

var _ marks.Repository = (*marksRepository)(nil)

type marksRepository struct {
	db *DB
}

func NewMarksRepository(db *DB) marks.Repository {
	return &marksRepository{db: db}
}

func (repo *marksRepository) col() *mongo.Collection  { return repo.db.collection(colMarks) }
func (repo *marksRepository) hist() *mongo.Collection { return repo.db.collection(colMarksHist) }

func (repo *marksRepository) GetSheet(ctx context.Context, regNo int) (marks.Sheet, error) {
	var sheet marks.Sheet
	err := repo.col().FindOne(ctx, bson.M{"_id": regNo}).Decode(&sheet)
	if err == mongo.ErrNoDocuments {
		return marks.Sheet{}, marks.ErrNotFound
	}
	if err != nil {
		return marks.Sheet{}, errors.Wrap(err, "getting marks sheet")
	}
	return sheet, nil
}

func (repo *marksRepository) MergeTerm(ctx context.Context, regNo int, class, term string, tm marks.TermMarks) (marks.Sheet, error) {
	set := bson.M{"class": class}
	for subject, scores := range tm {
		set[fmt.Sprintf("terms.%s.%s", term, subject)] = scores
	}

	var sheet marks.Sheet
	err := repo.col().FindOneAndUpdate(
		ctx,
		bson.M{"_id": regNo},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&sheet)
	if err != nil {
		return marks.Sheet{}, errors.Wrap(err, "merging term marks")
	}

	entry := marks.HistoryEntry{
		RegNo:      regNo,
		Term:       term,
		Marks:      tm,
		RecordedAt: time.Now().UTC(),
	}
	if _, err = repo.hist().InsertOne(ctx, entry); err != nil {
		return marks.Sheet{}, errors.Wrap(err, "recording marks history")
	}
	return sheet, nil
}

func (repo *marksRepository) FilterSheetsByClass(ctx context.Context, class string) ([]marks.Sheet, error) {
	cur, err := repo.col().Find(ctx, bson.M{"class": class}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying marks sheets")
	}
	var sheets []marks.Sheet
	if err = cur.All(ctx, &sheets); err != nil {
		return nil, errors.Wrap(err, "decoding marks sheets")
	}
	return sheets, nil
}

func (repo *marksRepository) HistoryForStudent(ctx context.Context, regNo int) ([]marks.HistoryEntry, error) {
	cur, err := repo.hist().Find(ctx, bson.M{"regNo": regNo}, options.Find().SetSort(bson.D{{Key: "recordedAt", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying marks history")
	}
	var entries []marks.HistoryEntry
	if err = cur.All(ctx, &entries); err != nil {
		return nil, errors.Wrap(err, "decoding marks history")
	}
	return entries, nil
}

func (repo *marksRepository) DeleteSheet(ctx context.Context, regNo int) error {
	if _, err := repo.col().DeleteOne(ctx, bson.M{"_id": regNo}); err != nil {
		return errors.Wrap(err, "deleting marks sheet")
	}
	_, err := repo.hist().DeleteMany(ctx, bson.M{"regNo": regNo})
	return errors.Wrap(err, "deleting marks history")
}
