package repository

import (
	"context"

	"github.com/devfolio/portfolio-api/internal/projects/domain"
)

// Store is the persistence boundary for projects. Implementations return
// domain.ErrNotFound for missing records, domain.ErrDuplicateKey when the
// unique slug constraint rejects a write and domain.ErrStoreUnavailable for
// anything the backend could not serve.
type Store interface {
	// List returns every project sorted by order ascending, then newest first.
	List(ctx context.Context) ([]domain.Project, error)
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Project, error)
	// SlugTaken reports whether a project other than excludeID owns slug.
	SlugTaken(ctx context.Context, slug, excludeID string) (bool, error)
	// ListMissingSlug returns projects stored without a slug.
	ListMissingSlug(ctx context.Context) ([]domain.Project, error)
	Insert(ctx context.Context, p *domain.Project) (*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) (*domain.Project, error)
	// Delete removes the project and returns the record as it was.
	Delete(ctx context.Context, id string) (*domain.Project, error)
}

func technologiesOrEmpty(t []string) []string {
	if t == nil {
		return []string{}
	}
	return t
}
