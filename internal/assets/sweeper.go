package assets

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepBatch = 100

// Sweeper periodically retries deletes for assets recorded in the orphan
// queue. Ids are dropped from the queue only after the store confirms.
type Sweeper struct {
	store   Store
	queue   *OrphanQueue
	log     *zap.Logger
	timeout time.Duration
	cron    *cron.Cron
}

func NewSweeper(store Store, queue *OrphanQueue, log *zap.Logger, timeout time.Duration) *Sweeper {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sweeper{store: store, queue: queue, log: log, timeout: timeout}
}

// Start schedules Sweep with a six-field cron spec (seconds first).
func (s *Sweeper) Start(spec string) error {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc(spec, func() {
		s.Sweep(context.Background())
	})
	if err != nil {
		return err
	}

	s.cron = c
	c.Start()
	s.log.Info("orphan sweeper started", zap.String("spec", spec))
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// Sweep makes one pass over the queue and returns how many assets were
// deleted.
func (s *Sweeper) Sweep(ctx context.Context) int {
	ids, err := s.queue.Pending(ctx, sweepBatch)
	if err != nil {
		s.log.Warn("orphan sweep: list failed", zap.Error(err))
		return 0
	}

	deleted := 0
	for _, id := range ids {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := s.store.Delete(callCtx, id)
		cancel()
		if err != nil {
			s.log.Warn("orphan sweep: delete failed", zap.String("asset_id", id), zap.Error(err))
			continue
		}
		if err := s.queue.Remove(ctx, id); err != nil {
			s.log.Warn("orphan sweep: dequeue failed", zap.String("asset_id", id), zap.Error(err))
			continue
		}
		deleted++
	}

	if len(ids) > 0 {
		s.log.Info("orphan sweep done", zap.Int("pending", len(ids)), zap.Int("deleted", deleted))
	}
	return deleted
}
