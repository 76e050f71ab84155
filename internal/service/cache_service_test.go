package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/tutor-timetable-api/pkg/errors"
)

type cacheRepoStub struct {
	getErr  error
	setErr  error
	removed int
	lastTTL time.Duration
}

func (c *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	if c.getErr != nil {
		return c.getErr
	}
	*dest.(*string) = "cached"
	return nil
}

func (c *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.lastTTL = ttl
	return c.setErr
}

func (c *cacheRepoStub) DeleteByPattern(ctx context.Context, pattern string) (int, error) {
	return c.removed, nil
}

func TestCacheServiceHitAndMiss(t *testing.T) {
	repo := &cacheRepoStub{}
	metrics := NewMetricsService()
	svc := NewCacheService(repo, metrics, time.Minute, nil, true)

	var value string
	hit, err := svc.Get(context.Background(), "k", &value)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "cached", value)

	repo.getErr = appErrors.ErrCacheMiss
	hit, err = svc.Get(context.Background(), "k", &value)
	require.NoError(t, err)
	assert.False(t, hit)

	repo.getErr = errors.New("connection refused")
	_, err = svc.Get(context.Background(), "k", &value)
	require.Error(t, err)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(2), snapshot.CacheMisses)
	assert.InDelta(t, 1.0/3.0, snapshot.CacheHitRatio, 0.0001)
}

func TestCacheServiceDefaultTTL(t *testing.T) {
	repo := &cacheRepoStub{}
	svc := NewCacheService(repo, nil, 0, nil, true)
	require.NoError(t, svc.Set(context.Background(), "k", "v", 0))
	assert.Equal(t, 10*time.Minute, repo.lastTTL)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := &cacheRepoStub{removed: 3}
	svc := NewCacheService(repo, nil, time.Minute, nil, false)

	var value string
	hit, err := svc.Get(context.Background(), "k", &value)
	require.NoError(t, err)
	assert.False(t, hit)
	removed, err := svc.Invalidate(context.Background(), "schedule:result:*")
	require.NoError(t, err)
	assert.Zero(t, removed)

	enabled := NewCacheService(repo, nil, time.Minute, nil, true)
	removed, err = enabled.Invalidate(context.Background(), "schedule:result:*")
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
}

func TestHashKeyIsStable(t *testing.T) {
	a, err := HashKey("p:", map[string]int{"b": 2, "a": 1})
	require.NoError(t, err)
	b, err := HashKey("p:", map[string]int{"a": 1, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, len("p:")+64)
}
