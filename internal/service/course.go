package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tazhibayda/bootcamp-service/internal/domain"
)

func (s *Service) CreateCourse(ctx context.Context, bootcamp primitive.ObjectID, in domain.CourseInput, owner primitive.ObjectID) (*domain.Course, error) {
	if err := domain.Validate(in); err != nil {
		return nil, err
	}
	if _, err := s.Store.FindBootcamp(ctx, bootcamp); err != nil {
		return nil, err
	}
	c := in.Course(bootcamp, owner)
	if err := s.Store.CreateCourse(ctx, c); err != nil {
		return nil, err
	}
	s.RecomputeAverageCost(ctx, bootcamp)
	return c, nil
}

func (s *Service) UpdateCourse(ctx context.Context, c *domain.Course, p domain.CoursePatch) (*domain.Course, error) {
	if err := domain.Validate(p); err != nil {
		return nil, err
	}
	out, err := s.Store.UpdateCourse(ctx, c.ID, bson.M(p.Set()))
	if err != nil {
		return nil, err
	}
	if p.Tuition != nil {
		s.RecomputeAverageCost(ctx, c.Bootcamp)
	}
	return out, nil
}

func (s *Service) DeleteCourse(ctx context.Context, c *domain.Course) error {
	if err := s.Store.DeleteCourse(ctx, c.ID); err != nil {
		return err
	}
	s.RecomputeAverageCost(ctx, c.Bootcamp)
	return nil
}
