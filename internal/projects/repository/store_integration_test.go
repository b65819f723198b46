package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devfolio/portfolio-api/config"
	"github.com/devfolio/portfolio-api/internal/projects/domain"
	"github.com/devfolio/portfolio-api/internal/storage/postgres"
)

// Integration tests run only against a real database:
//
//	TEST_DATABASE_URL=postgres://... go test ./internal/projects/repository
//	TEST_MONGO_URI=mongodb://localhost:27017 go test ./internal/projects/repository
func setupPostgresStore(t *testing.T) Store {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL integration test")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, &config.DatabaseConfig{URL: dsn})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, "delete from projects")
	require.NoError(t, err)

	return NewPostgresStore(pool)
}

func setupMongoStore(t *testing.T) Store {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set, skipping MongoDB integration test")
	}

	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	db := client.Database("portfolio_test")
	_, err = db.Collection(projectsCollection).DeleteMany(ctx, bson.M{})
	require.NoError(t, err)

	store := NewMongoStore(db)
	require.NoError(t, store.EnsureIndexes(ctx))
	return store
}

func TestPostgresStore_Contract(t *testing.T) {
	runStoreContract(t, setupPostgresStore(t))
}

func TestMongoStore_Contract(t *testing.T) {
	runStoreContract(t, setupMongoStore(t))
}

func newTestProject(title, slug string, order int) *domain.Project {
	p := domain.NewProject(domain.Input{})
	p.Title = title
	p.Slug = slug
	p.Description = "description of " + title
	p.Order = order
	return p
}

func runStoreContract(t *testing.T, store Store) {
	ctx := context.Background()

	first, err := store.Insert(ctx, newTestProject("Hello World", "hello-world", 2))
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, []string{}, first.Technologies)

	second, err := store.Insert(ctx, newTestProject("Other", "other", 1))
	require.NoError(t, err)

	t.Run("duplicate slug is rejected", func(t *testing.T) {
		_, err := store.Insert(ctx, newTestProject("Hello World", "hello-world", 0))
		assert.ErrorIs(t, err, domain.ErrDuplicateKey)
	})

	t.Run("list sorted by order", func(t *testing.T) {
		list, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)
		assert.Equal(t, first.ID, list[1].ID)
	})

	t.Run("lookups", func(t *testing.T) {
		got, err := store.GetBySlug(ctx, "hello-world")
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)

		got, err = store.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hello World", got.Title)

		_, err = store.GetByID(ctx, "not-an-id")
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = store.GetBySlug(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("slug taken honours exclusion", func(t *testing.T) {
		taken, err := store.SlugTaken(ctx, "hello-world", "")
		require.NoError(t, err)
		assert.True(t, taken)

		taken, err = store.SlugTaken(ctx, "hello-world", first.ID)
		require.NoError(t, err)
		assert.False(t, taken)

		taken, err = store.SlugTaken(ctx, "free", "")
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("update", func(t *testing.T) {
		first.Technologies = []string{"Go", "Redis"}
		first.Featured = true
		first.SetImage("https://cdn/x.png", "portfolio/x.png")
		got, err := store.Update(ctx, first)
		require.NoError(t, err)
		assert.Equal(t, []string{"Go", "Redis"}, got.Technologies)
		assert.True(t, got.Featured)
		assert.Equal(t, "portfolio/x.png", got.ImagePublicID)
		assert.Equal(t, "hello-world", got.Slug)

		clash := *got
		clash.ID = second.ID
		clash.Slug = "hello-world"
		_, err = store.Update(ctx, &clash)
		assert.ErrorIs(t, err, domain.ErrDuplicateKey)
	})

	t.Run("missing slug listing", func(t *testing.T) {
		_, err := store.Insert(ctx, newTestProject("Legacy", "", 0))
		require.NoError(t, err)
		_, err = store.Insert(ctx, newTestProject("Legacy Two", "", 0))
		require.NoError(t, err)

		missing, err := store.ListMissingSlug(ctx)
		require.NoError(t, err)
		assert.Len(t, missing, 2)
	})

	t.Run("delete returns record", func(t *testing.T) {
		gone, err := store.Delete(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "portfolio/x.png", gone.ImagePublicID)

		_, err = store.Delete(ctx, first.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
