package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/devfolio/portfolio-api/internal/projects/domain"
)

const (
	cacheGenKey    = "projects:gen"  // bumped on every write; old keys expire on their own
	cacheKeyPrefix = "projects:v"    // projects:v{gen}:{kind}:{value}
	defaultTTL     = 5 * time.Minute
)

// CachedStore is a read-through Redis cache in front of another Store.
// Reads of List, GetByID and GetBySlug are cached under the current
// generation; every successful write bumps the generation. Slug probes and
// backfill listings always hit the wrapped store. Redis failures degrade to
// uncached reads.
type CachedStore struct {
	next   Store
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewCachedStore(next Store, client *redis.Client, ttl time.Duration, log *zap.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedStore{next: next, client: client, ttl: ttl, log: log}
}

func (c *CachedStore) List(ctx context.Context) ([]domain.Project, error) {
	var out []domain.Project
	key, hit := c.lookup(ctx, "list", "all", &out)
	if hit {
		return out, nil
	}

	out, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, key, out)
	return out, nil
}

func (c *CachedStore) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	var p domain.Project
	key, hit := c.lookup(ctx, "id", id, &p)
	if hit {
		return &p, nil
	}

	got, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, key, got)
	return got, nil
}

func (c *CachedStore) GetBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	var p domain.Project
	key, hit := c.lookup(ctx, "slug", slug, &p)
	if hit {
		return &p, nil
	}

	got, err := c.next.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, key, got)
	return got, nil
}

func (c *CachedStore) SlugTaken(ctx context.Context, slug, excludeID string) (bool, error) {
	return c.next.SlugTaken(ctx, slug, excludeID)
}

func (c *CachedStore) ListMissingSlug(ctx context.Context) ([]domain.Project, error) {
	return c.next.ListMissingSlug(ctx)
}

func (c *CachedStore) Insert(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	out, err := c.next.Insert(ctx, p)
	if err == nil {
		c.invalidate(ctx)
	}
	return out, err
}

func (c *CachedStore) Update(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	out, err := c.next.Update(ctx, p)
	if err == nil {
		c.invalidate(ctx)
	}
	return out, err
}

func (c *CachedStore) Delete(ctx context.Context, id string) (*domain.Project, error) {
	out, err := c.next.Delete(ctx, id)
	if err == nil {
		c.invalidate(ctx)
	}
	return out, err
}

// lookup decodes a cached value into dst. It returns the key to fill on a
// miss, or "" when the cache is unreachable.
func (c *CachedStore) lookup(ctx context.Context, kind, value string, dst any) (string, bool) {
	gen, err := c.client.Get(ctx, cacheGenKey).Int64()
	if err != nil && err != redis.Nil {
		c.log.Warn("project cache unavailable", zap.Error(err))
		return "", false
	}

	key := fmt.Sprintf("%s%d:%s:%s", cacheKeyPrefix, gen, kind, value)
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return key, false
	}
	if err != nil {
		c.log.Warn("project cache read failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.log.Warn("project cache entry corrupt", zap.String("key", key), zap.Error(err))
		return key, false
	}
	return key, true
}

func (c *CachedStore) fill(ctx context.Context, key string, v any) {
	if key == "" {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("project cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedStore) invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, cacheGenKey).Err(); err != nil {
		c.log.Warn("project cache invalidation failed", zap.Error(err))
	}
}
