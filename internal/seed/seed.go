// Package seed loads and removes the sample data set used for local
// development and demos.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/tazhibayda/bootcamp-service/internal/domain"
	"github.com/tazhibayda/bootcamp-service/internal/geocode"
	"github.com/tazhibayda/bootcamp-service/internal/repo"
	"github.com/tazhibayda/bootcamp-service/internal/security"
	"github.com/tazhibayda/bootcamp-service/internal/service"
)

type bootcampRecord struct {
	domain.Bootcamp
	Address string `json:"address"`
}

type userRecord struct {
	domain.User
	Password string `json:"password"`
}

// Counts reports how many documents Import inserted per collection.
type Counts struct {
	Users, Bootcamps, Courses, Reviews int
}

type Seeder struct {
	Store *repo.Store
	Svc   *service.Service
	Geo   geocode.Geocoder // used only for bootcamps without a stored location
	Log   *zap.Logger
}

// Import inserts users, bootcamps, courses and reviews from dir, keeping the
// ids in the files, then recomputes every bootcamp's averages.
func (s *Seeder) Import(ctx context.Context, dir string) (Counts, error) {
	var (
		n         Counts
		users     []userRecord
		bootcamps []bootcampRecord
		courses   []domain.Course
		reviews   []domain.Review
	)
	for name, dst := range map[string]any{
		"users.json": &users, "bootcamps.json": &bootcamps, "courses.json": &courses, "reviews.json": &reviews,
	} {
		if err := readJSON(filepath.Join(dir, name), dst); err != nil {
			return n, err
		}
	}

	for i := range users {
		u := users[i].User
		hash, err := security.HashPassword(users[i].Password)
		if err != nil {
			return n, err
		}
		u.Password = hash
		if err := s.Store.CreateUser(ctx, &u); err != nil {
			return n, fmt.Errorf("user %s: %w", u.Email, err)
		}
		n.Users++
	}

	for i := range bootcamps {
		b := bootcamps[i].Bootcamp
		b.Slug = service.Slug(b.Name)
		if b.Photo == "" {
			b.Photo = domain.DefaultPhoto
		}
		if b.Location == nil && bootcamps[i].Address != "" && s.Geo != nil {
			loc, err := s.Geo.Geocode(ctx, bootcamps[i].Address)
			if err != nil {
				return n, fmt.Errorf("geocode %q: %w", b.Name, err)
			}
			b.Location = loc
		}
		if err := s.Store.CreateBootcamp(ctx, &b); err != nil {
			return n, fmt.Errorf("bootcamp %s: %w", b.Name, err)
		}
		n.Bootcamps++
	}

	for i := range courses {
		if err := s.Store.CreateCourse(ctx, &courses[i]); err != nil {
			return n, fmt.Errorf("course %s: %w", courses[i].Title, err)
		}
		n.Courses++
	}
	for i := range reviews {
		if err := s.Store.CreateReview(ctx, &reviews[i]); err != nil {
			return n, fmt.Errorf("review %s: %w", reviews[i].Title, err)
		}
		n.Reviews++
	}

	seen := map[primitive.ObjectID]bool{}
	for _, b := range bootcamps {
		if seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		s.Svc.RecomputeAverageCost(ctx, b.ID)
		s.Svc.RecomputeAverageRating(ctx, b.ID)
	}
	s.Log.Info("data imported",
		zap.Int("users", n.Users), zap.Int("bootcamps", n.Bootcamps),
		zap.Int("courses", n.Courses), zap.Int("reviews", n.Reviews))
	return n, nil
}

// Purge empties every collection the seeder writes to.
func (s *Seeder) Purge(ctx context.Context) error {
	var err error
	for name, c := range map[string]*mongo.Collection{
		repo.ColCourses:   s.Store.Courses(),
		repo.ColReviews:   s.Store.Reviews(),
		repo.ColBootcamps: s.Store.Bootcamps(),
		repo.ColUsers:     s.Store.Users(),
	} {
		res, derr := c.DeleteMany(ctx, bson.M{})
		if derr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", name, derr))
			continue
		}
		s.Log.Info("collection emptied", zap.String("collection", name), zap.Int64("deleted", res.DeletedCount))
	}
	return err
}

func readJSON(path string, dst any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}
