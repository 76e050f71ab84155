package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-timetable-api/pkg/jobs"
)

type flakyInvalidator struct {
	mu       sync.Mutex
	failures int
	patterns []string
	done     chan struct{}
}

func (f *flakyInvalidator) Invalidate(ctx context.Context, pattern string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return 0, errors.New("redis unavailable")
	}
	f.patterns = append(f.patterns, pattern)
	close(f.done)
	return 3, nil
}

func TestInvalidationQueueRetriesCacheErrors(t *testing.T) {
	cache := &flakyInvalidator{failures: 1, done: make(chan struct{})}
	q := NewInvalidationQueue(cache, jobs.QueueConfig{MaxRetries: 2, RetryDelay: time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	removed, err := q.Invalidate(context.Background(), ScheduleCachePrefix+"*")
	require.NoError(t, err)
	assert.Zero(t, removed)

	select {
	case <-cache.done:
	case <-time.After(2 * time.Second):
		t.Fatal("invalidation never succeeded")
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()
	assert.Equal(t, []string{"schedule:result:*"}, cache.patterns)
}

func TestInvalidationQueueNotStarted(t *testing.T) {
	q := NewInvalidationQueue(&flakyInvalidator{done: make(chan struct{})}, jobs.QueueConfig{})
	_, err := q.Invalidate(context.Background(), "x")
	assert.ErrorIs(t, err, jobs.ErrNotRunning)
}
