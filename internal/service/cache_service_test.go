package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/barbershop-api/internal/repository"
)

func newCacheFixture(t *testing.T, opts CacheOptions) (*CacheService, *miniredis.Miniredis, *MetricsService) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	metrics := NewMetricsService()
	return NewCacheService(repository.NewCacheRepository(client), metrics, nil, opts), mr, metrics
}

func TestCacheServiceNamespacesKeys(t *testing.T) {
	svc, mr, metrics := newCacheFixture(t, CacheOptions{Namespace: "bs:", DefaultTTL: time.Minute, Enabled: true})
	ctx := context.Background()

	var slots []time.Time
	hit, err := svc.Get(ctx, "availability:shop-1:b1:2030-01-07:30", &slots)
	require.NoError(t, err)
	assert.False(t, hit)

	want := []time.Time{time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)}
	require.NoError(t, svc.Set(ctx, "availability:shop-1:b1:2030-01-07:30", want, 0))
	assert.True(t, mr.Exists("bs:availability:shop-1:b1:2030-01-07:30"))
	assert.Equal(t, time.Minute, mr.TTL("bs:availability:shop-1:b1:2030-01-07:30"))

	hit, err = svc.Get(ctx, "availability:shop-1:b1:2030-01-07:30", &slots)
	require.NoError(t, err)
	assert.True(t, hit)
	require.Len(t, slots, 1)
	assert.True(t, want[0].Equal(slots[0]))

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
	assert.InDelta(t, 0.5, snap.CacheHitRatio, 0.0001)
}

func TestCacheServiceExplicitTTL(t *testing.T) {
	svc, mr, _ := newCacheFixture(t, CacheOptions{Enabled: true})
	require.NoError(t, svc.Set(context.Background(), "k", "v", 30*time.Second))
	assert.Equal(t, 30*time.Second, mr.TTL("k"))

	require.NoError(t, svc.Set(context.Background(), "d", "v", 0))
	assert.Equal(t, defaultCacheTTL, mr.TTL("d"))
}

func TestCacheServiceInvalidateStaysInNamespace(t *testing.T) {
	svc, mr, _ := newCacheFixture(t, CacheOptions{Namespace: "bs", Enabled: true})
	ctx := context.Background()
	require.NoError(t, svc.Set(ctx, "availability:shop-1:b1:2030-01-07:30", 1, 0))
	require.NoError(t, svc.Set(ctx, "availability:shop-2:b9:2030-01-07:30", 1, 0))
	require.NoError(t, mr.Set("availability:shop-1:foreign", "x"))

	require.NoError(t, svc.Invalidate(ctx, "availability:shop-1:*"))

	assert.False(t, mr.Exists("bs:availability:shop-1:b1:2030-01-07:30"))
	assert.True(t, mr.Exists("bs:availability:shop-2:b9:2030-01-07:30"))
	assert.True(t, mr.Exists("availability:shop-1:foreign"))
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	svc, mr, metrics := newCacheFixture(t, CacheOptions{Enabled: false})
	ctx := context.Background()

	assert.False(t, svc.Enabled())
	require.NoError(t, svc.Set(ctx, "k", "v", 0))
	assert.False(t, mr.Exists("k"))
	var out string
	hit, err := svc.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Zero(t, metrics.Snapshot().CacheMisses)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	assert.Equal(t, "k", nilSvc.Key("k"))
}

func TestCacheServiceStoreFailureIsAMiss(t *testing.T) {
	svc, mr, _ := newCacheFixture(t, CacheOptions{Enabled: true})
	mr.SetError("LOADING")

	var out string
	hit, err := svc.Get(context.Background(), "k", &out)
	assert.False(t, hit)
	assert.Error(t, err)
}
