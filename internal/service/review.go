package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/bootcamp-service/internal/domain"
)

func (s *Service) CreateReview(ctx context.Context, bootcamp primitive.ObjectID, in domain.ReviewInput, user primitive.ObjectID) (*domain.Review, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	if _, err := s.Store.FindBootcamp(ctx, bootcamp); err != nil {
		return nil, err
	}
	r := in.Review(bootcamp, user)
	if err := s.Store.CreateReview(ctx, r); err != nil {
		return nil, err
	}
	s.RecomputeAverageRating(ctx, bootcamp)
	return r, nil
}

func (s *Service) UpdateReview(ctx context.Context, r *domain.Review, p domain.ReviewPatch) (*domain.Review, error) {
	if err := domain.Validate(p); err != nil {
		return nil, err
	}
	out, err := s.Store.UpdateReview(ctx, r.ID, bson.M(p.Set()))
	if err != nil {
		return nil, err
	}
	if p.Rating != nil {
		s.RecomputeAverageRating(ctx, r.Bootcamp)
	}
	return out, nil
}

func (s *Service) DeleteReview(ctx context.Context, r *domain.Review) error {
	if err := s.Store.DeleteReview(ctx, r.ID); err != nil {
		return err
	}
	s.RecomputeAverageRating(ctx, r.Bootcamp)
	return nil
}
