package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/tazhibayda/bootcamp-service/internal/apperr"
)

const (
	ColBootcamps = "bootcamps"
	ColCourses   = "courses"
	ColUsers     = "users"
	ColReviews   = "reviews"
)

type Store struct {
	Client *mongo.Client
	DB     *mongo.Database

	colBootcamps *mongo.Collection
	colCourses   *mongo.Collection
	colUsers     *mongo.Collection
	colReviews   *mongo.Collection
}

func NewStore(ctx context.Context, uri, dbname string) (*Store, error) {
	cli, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetRetryWrites(true).
		SetMaxPoolSize(50),
	)
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, err
	}
	db := cli.Database(dbname)
	return &Store{
		Client:       cli,
		DB:           db,
		colBootcamps: db.Collection(ColBootcamps),
		colCourses:   db.Collection(ColCourses),
		colUsers:     db.Collection(ColUsers),
		colReviews:   db.Collection(ColReviews),
	}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error { return s.Client.Disconnect(ctx) }

func (s *Store) Bootcamps() *mongo.Collection { return s.colBootcamps }
func (s *Store) Courses() *mongo.Collection   { return s.colCourses }
func (s *Store) Users() *mongo.Collection     { return s.colUsers }
func (s *Store) Reviews() *mongo.Collection   { return s.colReviews }

// EnsureIndexes creates the unique and geo indexes the domain relies on.
// Index names are referenced by duplicate-key translation.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.colBootcamps.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(idxBootcampName),
		},
		{
			Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
			Options: options.Index().SetName("location_2dsphere"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("created_desc"),
		},
	}); err != nil {
		return err
	}

	if _, err := s.colCourses.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "bootcamp", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("bootcamp_created_desc"),
		},
	}); err != nil {
		return err
	}

	if _, err := s.colUsers.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(idxUserEmail),
		},
		{
			Keys:    bson.D{{Key: "resetPasswordToken", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("reset_token"),
		},
	}); err != nil {
		return err
	}

	_, err := s.colReviews.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "bootcamp", Value: 1}, {Key: "user", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(idxReviewPair),
		},
	})
	return err
}

// ParseID converts a path id; a malformed id is reported as not found.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.BadID(hex)
	}
	return id, nil
}

func startSpan(ctx context.Context, name string, opts ...ddtrace.StartSpanOption) (ddtrace.Span, context.Context) {
	return tracer.StartSpanFromContext(ctx, "mongo."+name, opts...)
}

func finish(sp ddtrace.Span, err error) {
	if err != nil && err != mongo.ErrNoDocuments {
		sp.SetTag("error", err)
	}
	sp.Finish()
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
