package assets

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const orphanSetKey = "assets:orphans"

// OrphanQueue remembers asset ids whose best-effort delete failed so the
// sweeper can retry them later.
type OrphanQueue struct {
	client *redis.Client
	key    string
}

func NewOrphanQueue(client *redis.Client) *OrphanQueue {
	return &OrphanQueue{client: client, key: orphanSetKey}
}

func (q *OrphanQueue) Add(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := q.client.SAdd(ctx, q.key, id).Err(); err != nil {
		return fmt.Errorf("failed to record orphan %s: %w", id, err)
	}
	return nil
}

// Pending returns up to limit queued ids in no particular order.
func (q *OrphanQueue) Pending(ctx context.Context, limit int64) ([]string, error) {
	ids, err := q.client.SRandMemberN(ctx, q.key, limit).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list orphans: %w", err)
	}
	return ids, nil
}

func (q *OrphanQueue) Remove(ctx context.Context, id string) error {
	if err := q.client.SRem(ctx, q.key, id).Err(); err != nil {
		return fmt.Errorf("failed to drop orphan %s: %w", id, err)
	}
	return nil
}

func (q *OrphanQueue) Len(ctx context.Context) (int64, error) {
	return q.client.SCard(ctx, q.key).Result()
}
