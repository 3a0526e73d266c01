package service

import (
	"context"
	"errors"
	"strings"

	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/bootcamp-service/internal/apperr"
	"github.com/tazhibayda/bootcamp-service/internal/domain"
	"github.com/tazhibayda/bootcamp-service/internal/geocode"
	"github.com/tazhibayda/bootcamp-service/internal/queue"
)

func Slug(name string) string { return slug.Make(name) }

func (s *Service) locate(ctx context.Context, address string) (*domain.Location, error) {
	if s.Geo == nil {
		return nil, nil
	}
	loc, err := s.Geo.Geocode(ctx, address)
	if errors.Is(err, geocode.ErrNoMatch) {
		return nil, apperr.Validation("Could not geocode address %q", address)
	}
	if err != nil {
		return nil, apperr.Internal(err, "geocode")
	}
	return loc, nil
}

// CreateBootcamp validates in, derives slug and location, and stores the
// bootcamp owned by owner. The address itself is not stored.
func (s *Service) CreateBootcamp(ctx context.Context, in domain.BootcampInput, owner primitive.ObjectID) (*domain.Bootcamp, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	b := in.Bootcamp(owner)
	b.Slug = Slug(b.Name)

	loc, err := s.locate(ctx, in.Address)
	if err != nil {
		return nil, err
	}
	b.Location = loc

	if err := s.Store.CreateBootcamp(ctx, b); err != nil {
		return nil, err
	}
	s.publish(ctx, queue.KeyBootcampCreated, queue.BootcampCreated{BootcampID: b.ID, UserID: owner, Name: b.Name})
	return b, nil
}

// UpdateBootcamp applies the non-nil fields of p. A new name re-derives the
// slug and a new address re-derives the location.
func (s *Service) UpdateBootcamp(ctx context.Context, id primitive.ObjectID, p domain.BootcampPatch) (*domain.Bootcamp, error) {
	if p.Name != nil {
		n := strings.TrimSpace(*p.Name)
		p.Name = &n
	}
	if err := domain.Validate(p); err != nil {
		return nil, err
	}
	set := bson.M(p.Set())
	if p.Name != nil {
		set["slug"] = Slug(*p.Name)
	}
	if p.Address != nil && strings.TrimSpace(*p.Address) != "" {
		loc, err := s.locate(ctx, *p.Address)
		if err != nil {
			return nil, err
		}
		if loc != nil {
			set["location"] = loc
		}
	}
	return s.Store.UpdateBootcamp(ctx, id, set, nil)
}

// DeleteBootcamp removes the bootcamp's courses and reviews, then the
// bootcamp itself.
func (s *Service) DeleteBootcamp(ctx context.Context, id primitive.ObjectID) error {
	courses, err := s.Store.DeleteCoursesByBootcamp(ctx, id)
	if err != nil {
		return err
	}
	reviews, err := s.Store.DeleteReviewsByBootcamp(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Store.DeleteBootcamp(ctx, id); err != nil {
		return err
	}
	s.Log.Info("bootcamp deleted",
		zap.String("bootcamp_id", id.Hex()),
		zap.Int64("courses", courses),
		zap.Int64("reviews", reviews),
	)
	s.publish(ctx, queue.KeyBootcampDeleted, queue.BootcampDeleted{BootcampID: id, CoursesDeleted: courses, ReviewsDeleted: reviews})
	return nil
}

func (s *Service) SetPhoto(ctx context.Context, id primitive.ObjectID, name string) (*domain.Bootcamp, error) {
	return s.Store.UpdateBootcamp(ctx, id, bson.M{"photo": name}, nil)
}
