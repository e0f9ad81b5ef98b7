package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shulehub/shule/core/teacher"
)

var _ teacher.Repository = (*teacherRepository)(nil)

type teacherRepository struct {
	db *DB
}

func NewTeacherRepository(db *DB) teacher.Repository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) col() *mongo.Collection { return repo.db.collection(colTeachers) }

func (repo *teacherRepository) CreateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	if _, err := repo.col().InsertOne(ctx, t); err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "creating teacher")
	}
	return t, nil
}

func (repo *teacherRepository) GetTeacherByID(ctx context.Context, id int) (teacher.Teacher, error) {
	return repo.get(ctx, bson.M{"_id": id})
}

func (repo *teacherRepository) GetTeacherByEmail(ctx context.Context, email string) (teacher.Teacher, error) {
	return repo.get(ctx, bson.M{"email": email})
}

func (repo *teacherRepository) FilterTeachers(ctx context.Context, filter teacher.QueryFilter) ([]teacher.Teacher, error) {
	query := bson.M{}
	if filter.Class != "" {
		query["class"] = filter.Class
	}
	if filter.Email != "" {
		query["email"] = filter.Email
	}
	cur, err := repo.col().Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	var teachers []teacher.Teacher
	if err = cur.All(ctx, &teachers); err != nil {
		return nil, errors.Wrap(err, "decoding teachers")
	}
	return teachers, nil
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	res, err := repo.col().ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if res.MatchedCount == 0 {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	return t, nil
}

func (repo *teacherRepository) DeleteTeachersByID(ctx context.Context, ids ...int) error {
	_, err := repo.col().DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return errors.Wrap(err, "deleting teachers")
}

func (repo *teacherRepository) get(ctx context.Context, query bson.M) (teacher.Teacher, error) {
	var t teacher.Teacher
	err := repo.col().FindOne(ctx, query).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "getting teacher")
	}
	return t, nil
}
