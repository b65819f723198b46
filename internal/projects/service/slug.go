package service

import (
	"context"
	"fmt"

	"github.com/devfolio/portfolio-api/internal/projects/domain"
)

// DefaultMaxSlugProbes bounds the numeric suffixes tried before giving up.
const DefaultMaxSlugProbes = 1000

// SlugChecker answers whether a slug is owned by a project other than
// excludeID.
type SlugChecker interface {
	SlugTaken(ctx context.Context, slug, excludeID string) (bool, error)
}

// SlugAssigner derives a unique slug from a title by probing <slug>,
// <slug>-1, <slug>-2 ... against the store. The probe is not atomic; the
// store's unique index settles races.
type SlugAssigner struct {
	store     SlugChecker
	maxProbes int
}

func NewSlugAssigner(store SlugChecker) *SlugAssigner {
	return &SlugAssigner{store: store, maxProbes: DefaultMaxSlugProbes}
}

// WithMaxProbes returns a copy limited to n suffixed candidates.
func (a *SlugAssigner) WithMaxProbes(n int) *SlugAssigner {
	cp := *a
	cp.maxProbes = n
	return &cp
}

// Assign returns the first free slug for title, ignoring the project
// identified by excludeID (empty on create).
func (a *SlugAssigner) Assign(ctx context.Context, title, excludeID string) (string, error) {
	base := domain.GenerateSlug(title)
	if base == "" {
		return "", fmt.Errorf("%w: title must contain at least one letter or digit", domain.ErrValidation)
	}

	candidate := base
	for n := 1; ; n++ {
		taken, err := a.store.SlugTaken(ctx, candidate, excludeID)
		if err != nil {
			return "", storeError(err)
		}
		if !taken {
			return candidate, nil
		}
		if n > a.maxProbes {
			return "", fmt.Errorf("%w: no free slug for %q after %d attempts", domain.ErrSlugConflict, base, a.maxProbes)
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
