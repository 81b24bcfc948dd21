package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sciclass-api/internal/repository"
	appErrors "github.com/noah-isme/sciclass-api/pkg/errors"
)

func TestCacheServiceRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryCacheRepository()
	metrics := NewMetricsService()
	cache := NewCacheService(repo, metrics, "sciclass", time.Minute, nil, true)

	var out map[string]int
	hit, err := cache.Get(ctx, "board:3", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "board:3", map[string]int{"threads": 2}, 0))
	hit, err = cache.Get(ctx, "board:3", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 2, out["threads"])

	require.NoError(t, cache.Invalidate(ctx, "board:*"))
	hit, err = cache.Get(ctx, "board:3", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	assert.InDelta(t, 1.0/3.0, metrics.Snapshot().CacheHitRatio, 0.001)
}

func TestCacheServiceDisabled(t *testing.T) {
	ctx := context.Background()
	cache := NewCacheService(repository.NewMemoryCacheRepository(), nil, "", 0, nil, false)
	assert.False(t, cache.Enabled())
	require.NoError(t, cache.Set(ctx, "k", 1, 0))
	var v int
	hit, err := cache.Get(ctx, "k", &v)
	require.NoError(t, err)
	assert.False(t, hit)

	var missing *CacheService
	assert.False(t, missing.Enabled())
}

func TestConfirmationExpires(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryCacheRepository()
	svc := NewConfirmationService(repo, "sciclass", time.Minute, nil)

	ticket, err := svc.Request(ctx, ActionEndSession, "SES-1", "T-1")
	require.NoError(t, err)
	assert.Equal(t, "SES-1", ticket.TargetID)

	err = svc.Consume(ctx, ActionDeleteStudent, "SES-1", "T-1", ticket.Token)
	require.Error(t, err)
	require.NoError(t, svc.Consume(ctx, ActionEndSession, "SES-1", "T-1", ticket.Token))
}

func TestConfirmationConsumedOnceUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryCacheRepository()
	svc := NewConfirmationService(repo, "sciclass", time.Minute, nil)

	ticket, err := svc.Request(ctx, ActionEndSession, "SES-1", "T-1")
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	var succeeded int32
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if svc.Consume(ctx, ActionEndSession, "SES-1", "T-1", ticket.Token) == nil {
				atomic.AddInt32(&succeeded, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), succeeded)
	err = svc.Consume(ctx, ActionEndSession, "SES-1", "T-1", ticket.Token)
	requireCode(t, err, appErrors.ErrConfirmationRequired)
}
