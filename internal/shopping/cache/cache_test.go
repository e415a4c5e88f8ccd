package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finda-workers/internal/models"
)

// ==========================
// Helpers
// ==========================

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func sampleProducts() []models.Product {
	return []models.Product{
		{ID: "serp_0_a", Title: "Apple iPhone 15", Price: "₺49.999", Site: "Trendyol", Rating: 4.6, ReviewCount: 120},
		{ID: "fs_1", Title: "Backpack", Price: "109.95 $", Site: "FakeStore"},
	}
}

// ==========================
// Key
// ==========================

func TestKey(t *testing.T) {
	assert.Equal(t, "iphone 15_false", Key("  iPhone   15 ", false))
	assert.Equal(t, "iphone 15_true", Key("iphone 15", true))
	assert.NotEqual(t, Key("x", true), Key("x", false))
}

// ==========================
// MemoryCache
// ==========================

func TestMemoryCache_TTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(DefaultTTL, WithClock(clock.Now))
	ctx := context.Background()

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "k", sampleProducts()))

	clock.Advance(599 * time.Second)
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, sampleProducts(), got)

	clock.Advance(time.Second)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 0, c.Len(), "expired entry is evicted on access")
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()

	in := sampleProducts()
	require.NoError(t, c.Set(ctx, "k", in))
	in[0].Title = "mutated"

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	got[1].Title = "mutated too"

	again, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "Apple iPhone 15", again[0].Title)
	assert.Equal(t, "Backpack", again[1].Title)
}

func TestMemoryCache_MaxEntries(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(time.Minute, WithClock(clock.Now), WithMaxEntries(2))
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", nil))
	clock.Advance(time.Second)
	require.NoError(t, c.Set(ctx, "b", nil))
	clock.Advance(time.Second)
	require.NoError(t, c.Set(ctx, "c", nil))

	assert.Equal(t, 2, c.Len())
	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss, "oldest entry evicted")
	_, err = c.Get(ctx, "b")
	assert.NoError(t, err)

	// Overwriting an existing key never evicts.
	require.NoError(t, c.Set(ctx, "b", sampleProducts()))
	assert.Equal(t, 2, c.Len())

	// Expired entries are purged before the oldest live one.
	clock.Advance(2 * time.Minute)
	require.NoError(t, c.Set(ctx, "d", nil))
	assert.Equal(t, 1, c.Len())
}

func TestMemoryCache_Concurrent(t *testing.T) {
	c := NewMemoryCache(time.Minute, WithMaxEntries(8))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i%10)
			_ = c.Set(ctx, key, sampleProducts())
			_, _ = c.Get(ctx, key)
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 8)
}

// ==========================
// RedisCache
// ==========================

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisCache_RoundTripAndExpiry(t *testing.T) {
	mr, client := setupRedis(t)
	c := NewRedisCache(client, "", DefaultTTL)
	ctx := context.Background()

	_, err := c.Get(ctx, "iphone_false")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "iphone_false", sampleProducts()))
	assert.True(t, mr.Exists(DefaultPrefix+"iphone_false"))
	assert.Equal(t, DefaultTTL, mr.TTL(DefaultPrefix+"iphone_false"))

	got, err := c.Get(ctx, "iphone_false")
	require.NoError(t, err)
	assert.Equal(t, sampleProducts(), got)

	mr.FastForward(DefaultTTL)
	_, err = c.Get(ctx, "iphone_false")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_CorruptValue(t *testing.T) {
	mr, client := setupRedis(t)
	require.NoError(t, mr.Set("p:k", "not json"))

	c := NewRedisCache(client, "p:", time.Minute)
	_, err := c.Get(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCacheMiss))
}

func TestRedisCache_BackendErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	c := NewRedisCache(client, "p:", time.Minute)
	ctx := context.Background()

	mock.ExpectGet("p:k").SetErr(errors.New("connection refused"))
	_, err := c.Get(ctx, "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis get")

	data, _ := json.Marshal(sampleProducts())
	mock.ExpectSet("p:k", data, time.Minute).SetErr(errors.New("READONLY"))
	err = c.Set(ctx, "k", sampleProducts())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis set")

	assert.NoError(t, mock.ExpectationsWereMet())
}
