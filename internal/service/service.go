// Package service holds the write paths that touch more than one collection:
// bootcamp geocoding, cascade delete and the derived bootcamp rollups.
package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/bootcamp-service/internal/domain"
	"github.com/tazhibayda/bootcamp-service/internal/geocode"
	"github.com/tazhibayda/bootcamp-service/internal/queue"
)

// Store is the part of repo.Store the service writes through.
type Store interface {
	CreateBootcamp(ctx context.Context, b *domain.Bootcamp) error
	FindBootcamp(ctx context.Context, id primitive.ObjectID) (*domain.Bootcamp, error)
	UpdateBootcamp(ctx context.Context, id primitive.ObjectID, set, unset bson.M) (*domain.Bootcamp, error)
	DeleteBootcamp(ctx context.Context, id primitive.ObjectID) error
	SetBootcampStat(ctx context.Context, id primitive.ObjectID, field string, v *float64) error

	CreateCourse(ctx context.Context, c *domain.Course) error
	UpdateCourse(ctx context.Context, id primitive.ObjectID, set bson.M) (*domain.Course, error)
	DeleteCourse(ctx context.Context, id primitive.ObjectID) error
	DeleteCoursesByBootcamp(ctx context.Context, bootcamp primitive.ObjectID) (int64, error)
	AverageTuition(ctx context.Context, bootcamp primitive.ObjectID) (float64, bool, error)

	CreateReview(ctx context.Context, r *domain.Review) error
	UpdateReview(ctx context.Context, id primitive.ObjectID, set bson.M) (*domain.Review, error)
	DeleteReview(ctx context.Context, id primitive.ObjectID) error
	DeleteReviewsByBootcamp(ctx context.Context, bootcamp primitive.ObjectID) (int64, error)
	AverageRating(ctx context.Context, bootcamp primitive.ObjectID) (float64, bool, error)
}

type Service struct {
	Store  Store
	Geo    geocode.Geocoder
	Events queue.Publisher
	Log    *zap.Logger
}

func New(store Store, geo geocode.Geocoder, events queue.Publisher, log *zap.Logger) *Service {
	if events == nil {
		events = queue.NewNoop()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Store: store, Geo: geo, Events: events, Log: log}
}

// publish sends an event without failing the write that caused it.
func (s *Service) publish(ctx context.Context, key string, event any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.Events.Publish(ctx, key, event, RequestID(ctx)); err != nil {
		s.Log.Warn("publish failed", zap.String("key", key), zap.Error(err))
	}
}

type reqIDKey struct{}

// WithRequestID returns ctx carrying the request id for event headers.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, reqIDKey{}, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(reqIDKey{}).(string)
	return id
}
