package service

import (
	"context"
	"math"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/bootcamp-service/internal/metrics"
)

const (
	fieldAverageCost   = "averageCost"
	fieldAverageRating = "averageRating"
)

// RoundCost rounds a mean tuition up to the next multiple of 10.
func RoundCost(mean float64) float64 { return math.Ceil(mean/10) * 10 }

// RoundRating rounds a mean rating to one decimal.
func RoundRating(mean float64) float64 { return math.Round(mean*10) / 10 }

// RecomputeAverageCost sets the bootcamp's averageCost from its courses, or
// unsets it when none remain. Failures are logged, not returned.
func (s *Service) RecomputeAverageCost(ctx context.Context, bootcamp primitive.ObjectID) {
	s.recompute(ctx, bootcamp, fieldAverageCost, s.Store.AverageTuition, RoundCost)
}

// RecomputeAverageRating is RecomputeAverageCost for review ratings.
func (s *Service) RecomputeAverageRating(ctx context.Context, bootcamp primitive.ObjectID) {
	s.recompute(ctx, bootcamp, fieldAverageRating, s.Store.AverageRating, RoundRating)
}

func (s *Service) recompute(
	ctx context.Context,
	bootcamp primitive.ObjectID,
	field string,
	avg func(context.Context, primitive.ObjectID) (float64, bool, error),
	round func(float64) float64,
) {
	err := func() error {
		mean, ok, err := avg(ctx, bootcamp)
		if err != nil {
			return err
		}
		var v *float64
		if ok {
			r := round(mean)
			v = &r
		}
		return s.Store.SetBootcampStat(ctx, bootcamp, field, v)
	}()
	metrics.RollupsTotal.WithLabelValues(field, metrics.Outcome(err)).Inc()
	if err != nil {
		s.Log.Error("rollup failed",
			zap.String("field", field),
			zap.String("bootcamp_id", bootcamp.Hex()),
			zap.Error(err),
		)
	}
}
