package bootstrap

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/devfolio/portfolio-api/config"
	"github.com/devfolio/portfolio-api/internal/assets"
	authservice "github.com/devfolio/portfolio-api/internal/auth/service"
	"github.com/devfolio/portfolio-api/internal/contact"
	projectrepo "github.com/devfolio/portfolio-api/internal/projects/repository"
	projectservice "github.com/devfolio/portfolio-api/internal/projects/service"
)

// App is the wired set of services shared by the server and the
// operational commands.
type App struct {
	Config   *config.Config
	Log      *zap.Logger
	Stores   *Stores
	Redis    *redis.Client
	Assets   assets.Store
	Orphans  *assets.OrphanQueue
	Projects *projectservice.ProjectService
	Auth     *authservice.AuthService
	Contact  *contact.Service
}

func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	stores, err := OpenStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	rdb, err := OpenRedis(ctx, cfg.Redis)
	if err != nil {
		stores.Close(ctx)
		return nil, err
	}

	assetStore, err := OpenAssetStore(ctx, cfg.Storage)
	if err != nil {
		closeRedis(rdb, log)
		stores.Close(ctx)
		return nil, err
	}

	app := &App{
		Config: cfg,
		Log:    log,
		Stores: stores,
		Redis:  rdb,
		Assets: assetStore,
	}

	projectStore := stores.Projects
	opts := projectservice.Options{
		Folder:      cfg.Storage.Folder,
		CallTimeout: cfg.Server.CallTimeout,
		Logger:      log.Named("projects"),
		// slug probes and the record Update modifies must come from the
		// database, never the cache
		Slugs:  projectservice.NewSlugAssigner(stores.Projects),
		Source: stores.Projects,
	}
	if rdb != nil {
		projectStore = projectrepo.NewCachedStore(stores.Projects, rdb, cfg.Redis.CacheTTL, log.Named("cache"))
		app.Orphans = assets.NewOrphanQueue(rdb)
		opts.Orphans = app.Orphans
	} else {
		log.Warn("REDIS_ADDR not set: project cache and orphan queue disabled")
	}
	app.Projects = projectservice.NewProjectService(projectStore, assetStore, opts)

	tokens := authservice.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	app.Auth = authservice.NewAuthService(stores.Users, tokens, log.Named("auth"))

	app.Contact = contact.NewService(
		contact.NewRecaptchaVerifier(cfg.Recaptcha.SecretKey),
		contact.NewSMTPMailer(cfg.Mail),
		cfg.Mail,
		cfg.Recaptcha.MinScore,
		log.Named("contact"),
	)

	return app, nil
}

// Sweeper returns the orphan asset sweeper, or nil without Redis.
func (a *App) Sweeper() *assets.Sweeper {
	if a.Orphans == nil {
		return nil
	}
	return assets.NewSweeper(a.Assets, a.Orphans, a.Log.Named("sweeper"), a.Config.Server.CallTimeout)
}

func (a *App) Close(ctx context.Context) {
	closeRedis(a.Redis, a.Log)
	a.Stores.Close(ctx)
}

func closeRedis(rdb *redis.Client, log *zap.Logger) {
	if rdb == nil {
		return
	}
	if err := rdb.Close(); err != nil {
		log.Warn("redis close failed", zap.Error(err))
	}
}
