package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/devfolio/portfolio-api/internal/assets"
	"github.com/devfolio/portfolio-api/internal/logging"
	"github.com/devfolio/portfolio-api/internal/projects/domain"
	"github.com/devfolio/portfolio-api/internal/projects/repository"
)

const defaultCallTimeout = 10 * time.Second

// OrphanRecorder remembers asset ids whose cleanup failed.
type OrphanRecorder interface {
	Add(ctx context.Context, id string) error
}

type Options struct {
	// Folder is the object store folder new images are uploaded into.
	Folder string
	// CallTimeout bounds each individual store and object store call.
	CallTimeout time.Duration
	Orphans     OrphanRecorder
	Logger      *zap.Logger
	Slugs       *SlugAssigner
	// Source is read for the record Update modifies. When the store is a
	// cache decorator this must be the store it wraps. Defaults to the store.
	Source ProjectReader
}

// ProjectReader loads a single project by id.
type ProjectReader interface {
	GetByID(ctx context.Context, id string) (*domain.Project, error)
}

// ProjectService runs the project lifecycle. Writes coordinate the store
// with the object store: a new image is uploaded before the store write and
// released again if the write fails; a replaced or deleted image is
// released only after the store write succeeded.
type ProjectService struct {
	store       repository.Store
	source      ProjectReader
	assets      assets.Store
	slugs       *SlugAssigner
	orphans     OrphanRecorder
	folder      string
	callTimeout time.Duration
	log         *zap.Logger
}

func NewProjectService(store repository.Store, assetStore assets.Store, opts Options) *ProjectService {
	s := &ProjectService{
		store:       store,
		source:      opts.Source,
		assets:      assetStore,
		slugs:       opts.Slugs,
		orphans:     opts.Orphans,
		folder:      opts.Folder,
		callTimeout: opts.CallTimeout,
		log:         opts.Logger,
	}
	if s.slugs == nil {
		s.slugs = NewSlugAssigner(store)
	}
	if s.source == nil {
		s.source = store
	}
	if s.callTimeout <= 0 {
		s.callTimeout = defaultCallTimeout
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	out, err := s.store.List(ctx)
	return out, storeError(err)
}

func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	p, err := s.store.GetByID(ctx, id)
	return p, storeError(err)
}

func (s *ProjectService) GetBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	p, err := s.store.GetBySlug(ctx, slug)
	return p, storeError(err)
}

// Create normalizes raw, assigns a unique slug, uploads the optional image
// and inserts the project. Nothing is left behind when any step fails.
func (s *ProjectService) Create(ctx context.Context, raw map[string]any, image *assets.Asset) (*domain.Project, error) {
	in, err := domain.Normalize(raw)
	if err != nil {
		return nil, err
	}

	p := domain.NewProject(in)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := validateImage(image); err != nil {
		return nil, err
	}

	if p.Slug, err = s.assignSlug(ctx, p.Title, ""); err != nil {
		return nil, err
	}

	uploaded, err := s.upload(ctx, image)
	if err != nil {
		return nil, err
	}
	if uploaded != nil {
		p.SetImage(uploaded.URL, uploaded.ID)
	}

	created, err := s.write(ctx, p, s.store.Insert)
	if err != nil {
		if uploaded != nil {
			s.release(ctx, uploaded.ID, "create failed")
		}
		return nil, err
	}

	logging.FromContext(ctx, s.log).Info("project created",
		zap.String("project_id", created.ID), zap.String("slug", created.Slug))
	return created, nil
}

// Update merges raw into the stored project. A changed title (or a project
// stored without slug) gets a fresh slug; the project's own slug is never
// counted as a collision. A new image replaces the old one, which is
// released only once the update is persisted.
func (s *ProjectService) Update(ctx context.Context, id string, raw map[string]any, image *assets.Asset) (*domain.Project, error) {
	gctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	existing, err := s.source.GetByID(gctx, id)
	cancel()
	if err != nil {
		return nil, storeError(err)
	}

	in, err := domain.Normalize(raw)
	if err != nil {
		return nil, err
	}

	next := *existing
	next.Technologies = append([]string{}, existing.Technologies...)
	in.ApplyTo(&next)
	if err := next.Validate(); err != nil {
		return nil, err
	}
	if err := validateImage(image); err != nil {
		return nil, err
	}

	if next.Title != existing.Title || next.Slug == "" {
		if next.Slug, err = s.assignSlug(ctx, next.Title, existing.ID); err != nil {
			return nil, err
		}
	}

	uploaded, err := s.upload(ctx, image)
	if err != nil {
		return nil, err
	}
	if uploaded != nil {
		next.SetImage(uploaded.URL, uploaded.ID)
	}

	updated, err := s.write(ctx, &next, s.store.Update)
	if err != nil {
		if uploaded != nil {
			s.release(ctx, uploaded.ID, "update failed")
		}
		return nil, err
	}

	if uploaded != nil && existing.HasImage() && existing.ImagePublicID != uploaded.ID {
		s.release(ctx, existing.ImagePublicID, "image replaced")
	}

	logging.FromContext(ctx, s.log).Info("project updated",
		zap.String("project_id", updated.ID), zap.String("slug", updated.Slug))
	return updated, nil
}

// Delete removes the project, then releases its image.
func (s *ProjectService) Delete(ctx context.Context, id string) (*domain.Project, error) {
	cctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	removed, err := s.store.Delete(cctx, id)
	cancel()
	if err != nil {
		return nil, storeError(err)
	}

	if removed.HasImage() {
		s.release(ctx, removed.ImagePublicID, "project deleted")
	}

	logging.FromContext(ctx, s.log).Info("project deleted", zap.String("project_id", removed.ID))
	return removed, nil
}

// BackfillSlugs assigns slugs to every stored project that lacks one and
// returns how many were updated.
func (s *ProjectService) BackfillSlugs(ctx context.Context) (int, error) {
	lctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	missing, err := s.store.ListMissingSlug(lctx)
	cancel()
	if err != nil {
		return 0, storeError(err)
	}

	log := logging.FromContext(ctx, s.log)
	updated := 0
	for i := range missing {
		p := missing[i]
		if p.Slug, err = s.assignSlug(ctx, p.Title, p.ID); err != nil {
			return updated, fmt.Errorf("project %s: %w", p.ID, err)
		}
		if _, err := s.write(ctx, &p, s.store.Update); err != nil {
			return updated, fmt.Errorf("project %s: %w", p.ID, err)
		}
		log.Info("slug assigned", zap.String("project_id", p.ID), zap.String("slug", p.Slug))
		updated++
	}
	return updated, nil
}

func (s *ProjectService) assignSlug(ctx context.Context, title, excludeID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.slugs.Assign(ctx, title, excludeID)
}

// write persists p. When the unique slug index rejects the write, the slug
// is probed again and the write retried once.
func (s *ProjectService) write(ctx context.Context, p *domain.Project, op func(context.Context, *domain.Project) (*domain.Project, error)) (*domain.Project, error) {
	attempt := func() (*domain.Project, error) {
		cctx, cancel := context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
		out, err := op(cctx, p)
		return out, storeError(err)
	}

	out, err := attempt()
	if !errors.Is(err, domain.ErrDuplicateKey) {
		return out, err
	}

	logging.FromContext(ctx, s.log).Warn("slug collided on write, probing again",
		zap.String("slug", p.Slug))
	slug, serr := s.assignSlug(ctx, p.Title, p.ID)
	if serr != nil {
		return nil, serr
	}
	p.Slug = slug
	return attempt()
}

func (s *ProjectService) upload(ctx context.Context, image *assets.Asset) (*assets.Stored, error) {
	if image == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	stored, err := s.assets.Upload(ctx, *image, s.folder)
	if err != nil {
		logging.FromContext(ctx, s.log).Warn("image upload failed",
			zap.String("filename", image.Filename), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrAssetUpload, err)
	}
	return &stored, nil
}

// release deletes an asset on a best-effort basis. Failures are logged and
// queued for the orphan sweeper, never returned. It runs even when the
// request context is already cancelled.
func (s *ProjectService) release(ctx context.Context, id, reason string) {
	log := logging.FromContext(ctx, s.log)
	ctx = context.WithoutCancel(ctx)

	cctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	err := s.assets.Delete(cctx, id)
	cancel()
	if err == nil {
		return
	}

	log.Warn("asset cleanup failed",
		zap.String("asset_id", id), zap.String("reason", reason), zap.Error(err))
	if s.orphans == nil {
		return
	}

	cctx, cancel = context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	if err := s.orphans.Add(cctx, id); err != nil {
		log.Warn("orphan asset not recorded", zap.String("asset_id", id), zap.Error(err))
	}
}

func validateImage(image *assets.Asset) error {
	if image == nil {
		return nil
	}
	if err := image.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return nil
}

// storeError makes sure every store failure carries a domain kind.
func storeError(err error) error {
	if err == nil || domain.Kind(err) != domain.KindInternal {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}
