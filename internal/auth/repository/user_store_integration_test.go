package repository

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/devfolio/portfolio-api/config"
	"github.com/devfolio/portfolio-api/internal/auth/domain"
	"github.com/devfolio/portfolio-api/internal/storage/postgres"
)

// Integration tests run only against a real database:
//
//	TEST_DATABASE_URL=postgres://... go test ./internal/auth/repository
//	TEST_MONGO_URI=mongodb://localhost:27017 go test ./internal/auth/repository
func setupPostgresUsers(t *testing.T) Store {
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
	_, err = pool.Exec(ctx, "delete from users")
	require.NoError(t, err)

	return NewUserRepository(pool)
}

func setupMongoUsers(t *testing.T) Store {
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
	_, err = db.Collection("users").DeleteMany(ctx, bson.M{})
	require.NoError(t, err)

	store := NewMongoUserRepository(db)
	require.NoError(t, store.EnsureIndexes(ctx))
	return store
}

func TestPostgresUserRepository_Contract(t *testing.T) {
	runUserStoreContract(t, setupPostgresUsers(t))
}

func TestMongoUserRepository_Contract(t *testing.T) {
	runUserStoreContract(t, setupMongoUsers(t))
}

func runUserStoreContract(t *testing.T, s Store) {
	ctx := context.Background()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	created, err := s.Create(ctx, &domain.User{
		Username:     "admin",
		Email:        "admin@example.com",
		Role:         domain.RoleAdmin,
		PasswordHash: "hash-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, domain.RoleAdmin, created.Role)
	assert.False(t, created.CreatedAt.IsZero())

	n, err = s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	t.Run("exists by username or email", func(t *testing.T) {
		for _, tc := range []struct {
			username, email string
			want            bool
		}{
			{"admin", "other@example.com", true},
			{"other", "admin@example.com", true},
			{"other", "other@example.com", false},
		} {
			got, err := s.ExistsByUsernameOrEmail(ctx, tc.username, tc.email)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got, "%s / %s", tc.username, tc.email)
		}
	})

	t.Run("unique username and email", func(t *testing.T) {
		_, err := s.Create(ctx, &domain.User{Username: "admin", Email: "new@example.com", Role: domain.RoleAdmin, PasswordHash: "h"})
		assert.ErrorIs(t, err, domain.ErrUserExists)

		_, err = s.Create(ctx, &domain.User{Username: "new", Email: "admin@example.com", Role: domain.RoleAdmin, PasswordHash: "h"})
		assert.ErrorIs(t, err, domain.ErrUserExists)
	})

	t.Run("lookups", func(t *testing.T) {
		byID, err := s.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "admin@example.com", byID.Email)

		byName, err := s.GetByUsername(ctx, "admin")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byName.ID)

		_, err = s.GetByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
		_, err = s.GetByID(ctx, "not-an-id")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("update password", func(t *testing.T) {
		require.NoError(t, s.UpdatePassword(ctx, created.ID, "hash-2"))

		got, err := s.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "hash-2", got.PasswordHash)

		assert.ErrorIs(t, s.UpdatePassword(ctx, "not-an-id", "h"), domain.ErrUserNotFound)
	})
}

func TestClassify(t *testing.T) {
	assert.ErrorIs(t, classify(pgx.ErrNoRows), domain.ErrUserNotFound)
	assert.ErrorIs(t, classify(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}), domain.ErrUserExists)
	assert.ErrorIs(t, classify(&pgconn.PgError{Code: "57P01"}), domain.ErrStoreUnavailable)
	assert.ErrorIs(t, classify(context.DeadlineExceeded), domain.ErrStoreUnavailable)
}

func TestClassifyMongo(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: "E11000 duplicate key"}}}

	assert.ErrorIs(t, classifyMongo(mongo.ErrNoDocuments), domain.ErrUserNotFound)
	assert.ErrorIs(t, classifyMongo(dup), domain.ErrUserExists)
	assert.ErrorIs(t, classifyMongo(errors.New("connection reset")), domain.ErrStoreUnavailable)
}
