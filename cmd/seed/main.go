// Command seed creates the admin account from ADMIN_USERNAME, ADMIN_EMAIL
// and ADMIN_PASSWORD when no user with that name or email exists yet.
package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/devfolio/portfolio-api/config"
	"github.com/devfolio/portfolio-api/internal/auth/domain"
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

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	app, err := bootstrap.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	defer app.Close(context.Background())

	created, err := app.Auth.EnsureAdmin(ctx, domain.RegisterRequest{
		Username: cfg.Auth.AdminUsername,
		Email:    cfg.Auth.AdminEmail,
		Password: cfg.Auth.AdminPassword,
	})
	if err != nil {
		logger.Fatal("seed admin failed", zap.Error(err))
	}

	if created {
		logger.Info("admin user created", zap.String("username", cfg.Auth.AdminUsername))
	} else {
		logger.Info("admin user already exists", zap.String("username", cfg.Auth.AdminUsername))
	}
}
