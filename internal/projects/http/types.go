package http

import (
	"context"

	"go.uber.org/zap"

	"github.com/devfolio/portfolio-api/internal/assets"
	"github.com/devfolio/portfolio-api/internal/projects/domain"
)

// ProjectService is the lifecycle the handlers drive.
type ProjectService interface {
	List(ctx context.Context) ([]domain.Project, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Project, error)
	Create(ctx context.Context, raw map[string]any, image *assets.Asset) (*domain.Project, error)
	Update(ctx context.Context, id string, raw map[string]any, image *assets.Asset) (*domain.Project, error)
	Delete(ctx context.Context, id string) (*domain.Project, error)
}

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc ProjectService
	log *zap.Logger
}

func New(svc ProjectService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}
