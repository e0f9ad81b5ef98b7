package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shulehub/shule/core/student"
)

var _ student.Repository = (*studentRepository)(nil)

type studentRepository struct {
	db *DB
}

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) col() *mongo.Collection { return repo.db.collection(colStudents) }

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	if _, err := repo.col().InsertOne(ctx, s); err != nil {
		return student.Student{}, errors.Wrap(err, "creating student")
	}
	return s, nil
}

func (repo *studentRepository) GetStudentByRegNo(ctx context.Context, regNo int) (student.Student, error) {
	return repo.get(ctx, bson.M{"_id": regNo})
}

func (repo *studentRepository) GetStudentByEmail(ctx context.Context, email string) (student.Student, error) {
	return repo.get(ctx, bson.M{"email": email})
}

func (repo *studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	return repo.query(ctx, filterQuery(filter))
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	res, err := repo.col().ReplaceOne(ctx, bson.M{"_id": s.RegNo}, s)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if res.MatchedCount == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return s, nil
}

func (repo *studentRepository) DeleteStudentsByRegNo(ctx context.Context, regNos ...int) error {
	_, err := repo.col().DeleteMany(ctx, bson.M{"_id": bson.M{"$in": regNos}})
	return errors.Wrap(err, "deleting students")
}

func (repo *studentRepository) WatchStudents(ctx context.Context, filter student.QueryFilter) (<-chan []student.Student, func(), error) {
	query := filterQuery(filter)
	return watchAndRequery(ctx, repo.col(), func(ctx context.Context) ([]student.Student, error) {
		return repo.query(ctx, query)
	})
}

func (repo *studentRepository) get(ctx context.Context, query bson.M) (student.Student, error) {
	var s student.Student
	err := repo.col().FindOne(ctx, query).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return student.Student{}, student.ErrNotFound
	}
	if err != nil {
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return s, nil
}

func (repo *studentRepository) query(ctx context.Context, query bson.M) ([]student.Student, error) {
	cur, err := repo.col().Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	var students []student.Student
	if err = cur.All(ctx, &students); err != nil {
		return nil, errors.Wrap(err, "decoding students")
	}
	return students, nil
}

func filterQuery(filter student.QueryFilter) bson.M {
	query := bson.M{}
	if filter.Class != "" {
		query["class"] = filter.Class
	}
	if filter.Email != "" {
		query["email"] = filter.Email
	}
	return query
}
