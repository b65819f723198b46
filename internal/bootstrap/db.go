package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/devfolio/portfolio-api/config"
	authrepo "github.com/devfolio/portfolio-api/internal/auth/repository"
	projectrepo "github.com/devfolio/portfolio-api/internal/projects/repository"
	"github.com/devfolio/portfolio-api/internal/storage/mongo"
	"github.com/devfolio/portfolio-api/internal/storage/postgres"
)

// Stores holds the persistence backends selected by STORE_DRIVER.
type Stores struct {
	Projects projectrepo.Store
	Users    authrepo.Store

	ping  func(ctx context.Context) error
	close func(ctx context.Context)
}

func (s *Stores) Ping(ctx context.Context) error { return s.ping(ctx) }

func (s *Stores) Close(ctx context.Context) {
	if s.close != nil {
		s.close(ctx)
	}
}

// OpenStores connects to the configured database and prepares its schema:
// migrations for postgres, indexes for mongo.
func OpenStores(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Stores, error) {
	switch cfg.Database.Driver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, &cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("connected to postgres", zap.Int("max_conns", cfg.Database.MaxConns))
		return &Stores{
			Projects: projectrepo.NewPostgresStore(pool),
			Users:    authrepo.NewUserRepository(pool),
			ping:     pool.Ping,
			close:    func(context.Context) { pool.Close() },
		}, nil

	case "mongo":
		client, db, err := mongo.Connect(ctx, &cfg.Mongo)
		if err != nil {
			return nil, err
		}
		projects := projectrepo.NewMongoStore(db)
		users := authrepo.NewMongoUserRepository(db)
		for _, ensure := range []func(context.Context) error{projects.EnsureIndexes, users.EnsureIndexes} {
			if err := ensure(ctx); err != nil {
				_ = client.Disconnect(ctx)
				return nil, err
			}
		}
		log.Info("connected to mongo", zap.String("database", cfg.Mongo.Database))
		return &Stores{
			Projects: projects,
			Users:    users,
			ping:     func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close: func(ctx context.Context) {
				if err := client.Disconnect(ctx); err != nil {
					log.Warn("mongo disconnect failed", zap.Error(err))
				}
			},
		}, nil
	}
	return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.Database.Driver)
}
