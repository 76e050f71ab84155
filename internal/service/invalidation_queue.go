package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/tutor-timetable-api/pkg/jobs"
)

const invalidateJob = "cache.invalidate"

// InvalidationQueue moves cache invalidation off the request path. Store mutations enqueue
// a pattern and a worker deletes the matching keys, retrying on cache errors.
type InvalidationQueue struct {
	cache  cacheInvalidator
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewInvalidationQueue wraps cache with a single worker queue.
func NewInvalidationQueue(cache cacheInvalidator, cfg jobs.QueueConfig) *InvalidationQueue {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	q := &InvalidationQueue{cache: cache, logger: cfg.Logger}
	q.queue = jobs.NewQueue("schedule-cache-invalidation", q.handle, cfg)
	return q
}

// Start launches the worker.
func (q *InvalidationQueue) Start(ctx context.Context) { q.queue.Start(ctx) }

// Stop waits for the worker to exit.
func (q *InvalidationQueue) Stop() { q.queue.Stop() }

// Invalidate enqueues pattern and reports zero removed keys; the count is logged once the
// worker runs.
func (q *InvalidationQueue) Invalidate(ctx context.Context, pattern string) (int, error) {
	if err := q.queue.Enqueue(ctx, jobs.Job{Type: invalidateJob, Payload: pattern}); err != nil {
		return 0, err
	}
	return 0, nil
}

func (q *InvalidationQueue) handle(ctx context.Context, job jobs.Job) error {
	pattern, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("unexpected payload %T", job.Payload)
	}
	removed, err := q.cache.Invalidate(ctx, pattern)
	if err != nil {
		return err
	}
	q.logger.Debug("schedule cache invalidated", zap.String("pattern", pattern), zap.Int("removed", removed), zap.Int("attempt", job.Attempt))
	return nil
}
