// Package mongodb implements the document store contracts on MongoDB.
package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shulehub/shule/core"
)

// Collection names.
const (
	colUsers       = "users"
	colCredentials = "credentials"
	colStudents    = "students"
	colTeachers    = "teachers"
	colMarks       = "marks"
	colMarksHist   = "marksHistory"
	colFees        = "fees"
	colClasses     = "classes"
	colSyllabi     = "syllabi"
	colTimetable   = "timetable"
	colCounters    = "counters"
)

type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to the configured MongoDB deployment and pings it.
func Open(ctx context.Context, conf *core.Config) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.Database.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongodb")
	}
	if err = client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "pinging mongodb")
	}
	return &DB{client: client, db: client.Database(conf.Database.Name)}, nil
}

func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique indexes the repositories rely on.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	for col, keys := range map[string]bson.D{
		colUsers:    {{Key: "email", Value: 1}},
		colStudents: {{Key: "email", Value: 1}},
	} {
		_, err := db.db.Collection(col).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    keys,
			Options: unique,
		})
		if err != nil {
			return errors.Wrapf(err, "creating %s index", col)
		}
	}
	return nil
}

func (db *DB) collection(name string) *mongo.Collection {
	return db.db.Collection(name)
}

// watchAndRequery bridges a change stream to a snapshot channel: it emits
// one snapshot immediately, then a fresh one per change event.
func watchAndRequery[T any](ctx context.Context, col *mongo.Collection, snapshot func(context.Context) ([]T, error)) (<-chan []T, func(), error) {
	stream, err := col.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "watching %s", col.Name())
	}

	watchCtx, cancel := context.WithCancel(ctx)
	out := make(chan []T, 1)

	initial, err := snapshot(ctx)
	if err != nil {
		cancel()
		_ = stream.Close(context.Background())
		return nil, nil, err
	}
	out <- initial

	go func() {
		defer close(out)
		defer func() { _ = stream.Close(context.Background()) }()
		for stream.Next(watchCtx) {
			snap, err := snapshot(watchCtx)
			if err != nil {
				continue
			}
			select {
			case out <- snap:
			case <-watchCtx.Done():
				return
			}
		}
	}()
	return out, cancel, nil
}
