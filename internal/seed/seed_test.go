package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tazhibayda/bootcamp-service/internal/repo"
	"github.com/tazhibayda/bootcamp-service/internal/security"
	"github.com/tazhibayda/bootcamp-service/internal/seed"
	"github.com/tazhibayda/bootcamp-service/internal/service"
)

func TestImportAndPurge(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test, needs docker")
	}
	ctx := context.Background()
	mc, err := mongodb.RunContainer(ctx, testcontainers.WithImage("mongo:6"))
	require.NoError(t, err)
	defer mc.Terminate(ctx) //nolint:errcheck
	uri, err := mc.ConnectionString(ctx)
	require.NoError(t, err)

	store, err := repo.NewStore(ctx, uri, "seed_test")
	require.NoError(t, err)
	defer store.Close(ctx) //nolint:errcheck
	require.NoError(t, store.EnsureIndexes(ctx))

	s := &seed.Seeder{Store: store, Svc: service.New(store, nil, nil, zap.NewNop()), Log: zap.NewNop()}
	n, err := s.Import(ctx, "../../data/seed")
	require.NoError(t, err)
	assert.Equal(t, seed.Counts{Users: 5, Bootcamps: 2, Courses: 4, Reviews: 3}, n)

	devworks, _ := primitive.ObjectIDFromHex("5d713995b721c3bb38c1f5d0")
	b, err := store.FindBootcamp(ctx, devworks)
	require.NoError(t, err)
	assert.Equal(t, "devworks-bootcamp", b.Slug)
	require.NotNil(t, b.AverageCost)
	assert.Equal(t, 9000.0, *b.AverageCost)
	require.NotNil(t, b.AverageRating)
	assert.Equal(t, 9.0, *b.AverageRating)

	u, err := store.FindUserWithPassword(ctx, "publisher@gmail.com")
	require.NoError(t, err)
	assert.True(t, security.CheckPassword(u.Password, "123456"))

	// a second import collides on the fixed ids
	_, err = s.Import(ctx, "../../data/seed")
	assert.Error(t, err)

	require.NoError(t, s.Purge(ctx))
	for _, c := range []string{repo.ColUsers, repo.ColBootcamps, repo.ColCourses, repo.ColReviews} {
		cnt, err := store.Client.Database("seed_test").Collection(c).CountDocuments(ctx, bson.M{})
		require.NoError(t, err)
		assert.Zero(t, cnt, c)
	}
}
