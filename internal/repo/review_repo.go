package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/tazhibayda/bootcamp-service/internal/domain"
	"github.com/tazhibayda/bootcamp-service/internal/query"
)

// ReviewBootcamp expands a review's bootcamp reference.
var ReviewBootcamp = query.Relation{
	As: "bootcamp", From: ColBootcamps, LocalField: "bootcamp", ForeignField: "_id",
	Select: []string{"name", "description"},
}

func reviewWhat(id primitive.ObjectID) string { return "review found with the id of " + id.Hex() }

func (s *Store) CreateReview(ctx context.Context, r *domain.Review) (err error) {
	sp, ctx := startSpan(ctx, "reviews.insert", tracer.Tag("bootcamp_id", r.Bootcamp.Hex()))
	defer func() { finish(sp, err) }()

	r.CreatedAt = time.Now().UTC()
	res, err := s.colReviews.InsertOne(ctx, r)
	if err != nil {
		return translate(err, "review")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		r.ID = oid
	}
	return nil
}

func (s *Store) FindReview(ctx context.Context, id primitive.ObjectID) (_ *domain.Review, err error) {
	sp, ctx := startSpan(ctx, "reviews.find_one", tracer.Tag("review_id", id.Hex()))
	defer func() { finish(sp, err) }()

	var r domain.Review
	if err = s.colReviews.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, translate(err, reviewWhat(id))
	}
	return &r, nil
}

func (s *Store) FindReviewView(ctx context.Context, id primitive.ObjectID) (_ map[string]any, err error) {
	sp, ctx := startSpan(ctx, "reviews.find_view", tracer.Tag("review_id", id.Hex()))
	defer func() { finish(sp, err) }()

	doc, err := findOnePopulated(ctx, s.colReviews, id, ReviewBootcamp)
	if err != nil {
		return nil, translate(err, reviewWhat(id))
	}
	return doc, nil
}

func (s *Store) ListReviewsByBootcamp(ctx context.Context, bootcamp primitive.ObjectID) (_ []domain.Review, err error) {
	sp, ctx := startSpan(ctx, "reviews.list_by_bootcamp", tracer.Tag("bootcamp_id", bootcamp.Hex()))
	defer func() { finish(sp, err) }()

	cur, err := s.colReviews.Find(ctx, bson.M{"bootcamp": bootcamp},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Review](ctx, cur)
}

func (s *Store) UpdateReview(ctx context.Context, id primitive.ObjectID, set bson.M) (_ *domain.Review, err error) {
	sp, ctx := startSpan(ctx, "reviews.update", tracer.Tag("review_id", id.Hex()))
	defer func() { finish(sp, err) }()

	if len(set) == 0 {
		return s.FindReview(ctx, id)
	}
	var r domain.Review
	err = s.colReviews.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&r)
	if err != nil {
		return nil, translate(err, reviewWhat(id))
	}
	return &r, nil
}

func (s *Store) DeleteReview(ctx context.Context, id primitive.ObjectID) (err error) {
	sp, ctx := startSpan(ctx, "reviews.delete", tracer.Tag("review_id", id.Hex()))
	defer func() { finish(sp, err) }()

	res, err := s.colReviews.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return translate(errNoDocuments, reviewWhat(id))
	}
	return nil
}

func (s *Store) DeleteReviewsByBootcamp(ctx context.Context, bootcamp primitive.ObjectID) (_ int64, err error) {
	sp, ctx := startSpan(ctx, "reviews.delete_by_bootcamp", tracer.Tag("bootcamp_id", bootcamp.Hex()))
	defer func() { finish(sp, err) }()

	res, err := s.colReviews.DeleteMany(ctx, bson.M{"bootcamp": bootcamp})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// AverageRating returns the mean rating of a bootcamp's reviews.
func (s *Store) AverageRating(ctx context.Context, bootcamp primitive.ObjectID) (float64, bool, error) {
	return s.average(ctx, s.colReviews, bootcamp, "rating")
}
