package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/devfolio/portfolio-api/internal/assets"
	"github.com/devfolio/portfolio-api/internal/projects/domain"
)

// journal records calls across fakes so tests can assert ordering.
type journal struct {
	events []string
}

func (j *journal) add(format string, args ...any) {
	j.events = append(j.events, fmt.Sprintf(format, args...))
}

// memStore is an in-memory repository.Store enforcing slug uniqueness.
// The optional hooks run before the default behaviour and may short-circuit
// it by returning a non-nil error.
type memStore struct {
	j        *journal
	projects map[string]*domain.Project
	seq      int

	insertHook    func(p *domain.Project) error
	updateHook    func(p *domain.Project) error
	slugTakenHook func(slug string) error
}

func newMemStore(j *journal) *memStore {
	return &memStore{j: j, projects: map[string]*domain.Project{}}
}

func (m *memStore) seed(p domain.Project) *domain.Project {
	m.seq++
	if p.ID == "" {
		p.ID = fmt.Sprintf("p%d", m.seq)
	}
	if p.ProjectType == "" {
		p.ProjectType = domain.TypeFrontend
	}
	if p.Description == "" {
		p.Description = "desc"
	}
	if p.Technologies == nil {
		p.Technologies = []string{}
	}
	m.projects[p.ID] = &p
	cp := p
	return &cp
}

func (m *memStore) List(ctx context.Context) ([]domain.Project, error) {
	out := make([]domain.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].Order != out[k].Order {
			return out[i].Order < out[k].Order
		}
		return out[i].CreatedAt.After(out[k].CreatedAt)
	})
	return out, nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) GetBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	for _, p := range m.projects {
		if p.Slug == slug && slug != "" {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	if m.slugTakenHook != nil {
		if err := m.slugTakenHook(slug); err != nil {
			return false, err
		}
	}
	for id, p := range m.projects {
		if p.Slug == slug && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListMissingSlug(ctx context.Context) ([]domain.Project, error) {
	var out []domain.Project
	for _, p := range m.projects {
		if p.Slug == "" {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

func (m *memStore) slugOwned(slug, id string) bool {
	for pid, p := range m.projects {
		if slug != "" && p.Slug == slug && pid != id {
			return true
		}
	}
	return false
}

func (m *memStore) Insert(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	m.j.add("store.insert %s", p.Slug)
	if m.insertHook != nil {
		if err := m.insertHook(p); err != nil {
			return nil, err
		}
	}
	if m.slugOwned(p.Slug, "") {
		return nil, domain.ErrDuplicateKey
	}
	m.seq++
	cp := *p
	cp.ID = fmt.Sprintf("p%d", m.seq)
	cp.CreatedAt = time.Unix(int64(m.seq), 0)
	cp.UpdatedAt = cp.CreatedAt
	m.projects[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memStore) Update(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	m.j.add("store.update %s", p.ID)
	if m.updateHook != nil {
		if err := m.updateHook(p); err != nil {
			return nil, err
		}
	}
	if _, ok := m.projects[p.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	if m.slugOwned(p.Slug, p.ID) {
		return nil, domain.ErrDuplicateKey
	}
	cp := *p
	m.projects[p.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memStore) Delete(ctx context.Context, id string) (*domain.Project, error) {
	m.j.add("store.delete %s", id)
	p, ok := m.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(m.projects, id)
	return p, nil
}

// fakeAssets is an object store recording uploads and deletes.
type fakeAssets struct {
	j         *journal
	seq       int
	live      map[string]bool
	uploadErr error
	deleteErr error
	deleted   []string
}

func newFakeAssets(j *journal) *fakeAssets {
	return &fakeAssets{j: j, live: map[string]bool{}}
}

func (f *fakeAssets) Upload(ctx context.Context, a assets.Asset, folder string) (assets.Stored, error) {
	if f.uploadErr != nil {
		return assets.Stored{}, f.uploadErr
	}
	f.seq++
	id := fmt.Sprintf("%s/img%d", folder, f.seq)
	f.live[id] = true
	f.j.add("assets.upload %s", id)
	return assets.Stored{URL: "https://cdn.test/" + id, ID: id}, nil
}

func (f *fakeAssets) Delete(ctx context.Context, id string) error {
	f.j.add("assets.delete %s", id)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.live, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeOrphans struct {
	ids []string
	err error
}

func (f *fakeOrphans) Add(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.ids = append(f.ids, id)
	return nil
}

var errBoom = errors.New("boom")

var pngImage = &assets.Asset{
	Data:        append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...),
	Filename:    "shot.png",
	ContentType: "image/png",
}
