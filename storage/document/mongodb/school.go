package mongodb

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shulehub/shule/core/school"
)

var _ school.Repository = (*schoolRepository)(nil)

type schoolRepository struct {
	db *DB
}

func NewSchoolRepository(db *DB) school.Repository {
	return &schoolRepository{db: db}
}

func (repo *schoolRepository) classes() *mongo.Collection   { return repo.db.collection(colClasses) }
func (repo *schoolRepository) syllabi() *mongo.Collection   { return repo.db.collection(colSyllabi) }
func (repo *schoolRepository) timetable() *mongo.Collection { return repo.db.collection(colTimetable) }

func (repo *schoolRepository) CreateClass(ctx context.Context, c school.Class) (school.Class, error) {
	if _, err := repo.classes().InsertOne(ctx, c); err != nil {
		return school.Class{}, errors.Wrap(err, "creating class")
	}
	return c, nil
}

func (repo *schoolRepository) QueryAllClasses(ctx context.Context) ([]school.Class, error) {
	cur, err := repo.classes().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	var classes []school.Class
	if err = cur.All(ctx, &classes); err != nil {
		return nil, errors.Wrap(err, "decoding classes")
	}
	return classes, nil
}

func (repo *schoolRepository) DeleteClass(ctx context.Context, name string) error {
	res, err := repo.classes().DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return errors.Wrap(err, "deleting class")
	}
	if res.DeletedCount == 0 {
		return school.ErrClassNotFound
	}
	return nil
}

func (repo *schoolRepository) WatchClasses(ctx context.Context) (<-chan []school.Class, func(), error) {
	return watchAndRequery(ctx, repo.classes(), repo.QueryAllClasses)
}

func (repo *schoolRepository) GetSyllabus(ctx context.Context, class string) (school.Syllabus, error) {
	var syl school.Syllabus
	err := repo.syllabi().FindOne(ctx, bson.M{"_id": class}).Decode(&syl)
	if err == mongo.ErrNoDocuments {
		return school.Syllabus{}, school.ErrSyllabusNotFound
	}
	if err != nil {
		return school.Syllabus{}, errors.Wrap(err, "getting syllabus")
	}
	return syl, nil
}

func (repo *schoolRepository) SetSyllabus(ctx context.Context, class, subject, outline string) (school.Syllabus, error) {
	var syl school.Syllabus
	err := repo.syllabi().FindOneAndUpdate(
		ctx,
		bson.M{"_id": class},
		bson.M{"$set": bson.M{fmt.Sprintf("outlines.%s", subject): outline}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&syl)
	if err != nil {
		return school.Syllabus{}, errors.Wrap(err, "setting syllabus outline")
	}
	return syl, nil
}

func (repo *schoolRepository) DeleteSyllabusSubject(ctx context.Context, class, subject string) error {
	res, err := repo.syllabi().UpdateOne(
		ctx,
		bson.M{"_id": class},
		bson.M{"$unset": bson.M{fmt.Sprintf("outlines.%s", subject): ""}},
	)
	if err != nil {
		return errors.Wrap(err, "deleting syllabus outline")
	}
	if res.MatchedCount == 0 {
		return school.ErrSyllabusNotFound
	}
	return nil
}

func (repo *schoolRepository) GetTimetable(ctx context.Context, class string) ([]school.TimetableEntry, error) {
	cur, err := repo.timetable().Find(ctx, bson.M{"class": class}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying timetable")
	}
	var entries []school.TimetableEntry
	if err = cur.All(ctx, &entries); err != nil {
		return nil, errors.Wrap(err, "decoding timetable")
	}
	return entries, nil
}

func (repo *schoolRepository) SetTimetableEntry(ctx context.Context, e school.TimetableEntry) (school.TimetableEntry, error) {
	_, err := repo.timetable().ReplaceOne(ctx, bson.M{"_id": e.ID}, e, options.Replace().SetUpsert(true))
	if err != nil {
		return school.TimetableEntry{}, errors.Wrap(err, "setting timetable entry")
	}
	return e, nil
}
