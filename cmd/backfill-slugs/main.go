// Command backfill-slugs assigns a unique slug to every stored project that
// does not have one yet.
package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/devfolio/portfolio-api/config"
	"github.com/devfolio/portfolio-api/internal/bootstrap"
	"github.com/devfolio/portfolio-api/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	app, err := bootstrap.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer app.Close(context.Background())

	n, err := app.Projects.BackfillSlugs(ctx)
	if err != nil {
		logger.Fatal("backfill failed", zap.Int("updated", n), zap.Error(err))
	}
	logger.Info("backfill complete", zap.Int("updated", n))
}
