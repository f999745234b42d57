package ratelimiter_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dealdocs/pkg/ratelimiter"
)

// clock is a settable time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var cfg = ratelimiter.Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Minute}

func newMemoryBucket(t *testing.T, c *clock) *ratelimiter.Bucket {
	t.Helper()
	store := ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0), ratelimiter.WithClock(c.Now))
	t.Cleanup(store.Close)
	b, err := ratelimiter.NewBucket(store, cfg)
	require.NoError(t, err)
	return b
}

func TestNewBucketValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  ratelimiter.Config
	}{
		{"zero capacity", ratelimiter.Config{RefillRate: 1, RefillInterval: time.Second}},
		{"zero rate", ratelimiter.Config{Capacity: 1, RefillInterval: time.Second}},
		{"zero interval", ratelimiter.Config{Capacity: 1, RefillRate: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0)), tt.cfg)
			assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
		})
	}
}

func TestBucketBurstAndRefill(t *testing.T) {
	t.Parallel()

	c := &clock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	b := newMemoryBucket(t, c)
	ctx := context.Background()

	for i := range 3 {
		res, err := b.Allow(ctx, "device-1")
		require.NoError(t, err)
		assert.True(t, res.Allowed(), "request %d", i)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := b.Allow(ctx, "device-1")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, 3, res.Limit)

	other, err := b.Allow(ctx, "device-2")
	require.NoError(t, err)
	assert.True(t, other.Allowed(), "buckets are per key")

	c.Advance(2 * time.Minute)
	res, err = b.Status(ctx, "device-1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Remaining, "refused requests spend nothing")

	c.Advance(time.Hour)
	res, err = b.Status(ctx, "device-1")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Remaining, "refill is capped at capacity")

	require.NoError(t, b.Reset(ctx, "device-1"))
	_, err = b.AllowN(ctx, "device-1", 0)
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
}

func TestComposite(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/share", nil)
	fixed := func(s string) ratelimiter.KeyFunc { return func(*http.Request) string { return s } }

	assert.Equal(t, "share:device-1", ratelimiter.Composite(fixed("share"), fixed(""), fixed("device-1"))(r))
	assert.Empty(t, ratelimiter.Composite(fixed(""))(r))

	long := ratelimiter.Composite(fixed(strings.Repeat("x", 80)))(r)
	assert.NotEmpty(t, long)
	assert.LessOrEqual(t, len(long), 64)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	c := &clock{now: time.Now()}
	b := newMemoryBucket(t, c)
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	t.Run("limits", func(t *testing.T) {
		t.Parallel()

		h := ratelimiter.Middleware(b, func(*http.Request) string { return "mw" }, nil)(ok)
		codes := make([]int, 0, 4)
		var last *httptest.ResponseRecorder
		for range 4 {
			last = httptest.NewRecorder()
			h.ServeHTTP(last, httptest.NewRequest(http.MethodPost, "/", nil))
			codes = append(codes, last.Code)
		}
		assert.Equal(t, []int{204, 204, 204, 429}, codes)
		assert.Equal(t, "3", last.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, last.Header().Get("Retry-After"))
	})

	t.Run("custom refusal", func(t *testing.T) {
		t.Parallel()

		denied := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
		h := ratelimiter.Middleware(b, func(*http.Request) string { return "custom" }, denied)(ok)
		var code int
		for range 4 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
			code = rec.Code
		}
		assert.Equal(t, http.StatusTeapot, code)
	})

	t.Run("empty key is not limited", func(t *testing.T) {
		t.Parallel()

		h := ratelimiter.Middleware(b, func(*http.Request) string { return "" }, nil)(ok)
		for range 5 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
			assert.Equal(t, http.StatusNoContent, rec.Code)
		}
	})
}

func TestRedisStore(t *testing.T) {
	t.Parallel()

	url := os.Getenv("DEALDOCS_TEST_REDIS_URL")
	if url == "" {
		t.Skip("DEALDOCS_TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })

	b, err := ratelimiter.NewBucket(ratelimiter.NewRedisStore(client, "dealdocs:test:ratelimit:"), cfg)
	require.NoError(t, err)

	key := uuid.NewString()
	ctx := context.Background()
	t.Cleanup(func() { _ = b.Reset(ctx, key) })

	for range 3 {
		res, err := b.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, res.Allowed())
	}
	res, err := b.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.True(t, res.ResetAt.After(time.Now()))
}
