package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clock is a manually advanced time source.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(t *testing.T, cfg *Config) (*Limiter, *clock) {
	t.Helper()
	cfg.CleanupInterval = 0
	l := NewLimiter(cfg)
	t.Cleanup(l.Stop)
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	l.now = c.now
	return l, c
}

func TestTokenBucket_TakeAndRefill(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := newTokenBucket(2, 1, start)

	ok, remaining, _ := b.take(start)
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)

	ok, remaining, reset := b.take(start)
	assert.True(t, ok)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, start.Add(2*time.Second), reset)

	ok, _, _ = b.take(start)
	assert.False(t, ok)
	assert.Equal(t, time.Second, b.retryAfter())

	ok, _, _ = b.take(start.Add(time.Second))
	assert.True(t, ok, "one token refills after a second")
}

func TestTokenBucket_NeverExceedsCapacity(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := newTokenBucket(3, 10, start)

	_, remaining, reset := b.take(start.Add(time.Hour))
	assert.Equal(t, 2, remaining)
	assert.True(t, reset.After(start.Add(time.Hour)))
}

func TestLimiter_DefaultLimit(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 3, DefaultWindow: time.Minute})

	for i := 0; i < 3; i++ {
		allowed, info := l.Allow("10.0.0.1", "/v1/portfolio", "GET")
		require.True(t, allowed, "request %d", i)
		assert.Equal(t, 3, info.Limit)
		assert.Equal(t, 2-i, info.Remaining)
	}

	allowed, info := l.Allow("10.0.0.1", "/v1/portfolio", "GET")
	assert.False(t, allowed)
	assert.Positive(t, info.RetryAfter)

	allowed, _ = l.Allow("10.0.0.2", "/v1/portfolio", "GET")
	assert.True(t, allowed, "other clients have their own bucket")
}

func TestLimiter_RefillsOverWindow(t *testing.T) {
	l, c := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 2, DefaultWindow: time.Minute})

	l.Allow("client", "/v1/portfolio", "GET")
	l.Allow("client", "/v1/portfolio", "GET")
	allowed, _ := l.Allow("client", "/v1/portfolio", "GET")
	require.False(t, allowed)

	c.advance(31 * time.Second)
	allowed, _ = l.Allow("client", "/v1/portfolio", "GET")
	assert.True(t, allowed)
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.9": true},
	})

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/v1/portfolio", "GET")
		assert.True(t, allowed)
	}

	allowed, info := l.Allow("10.0.0.9", "/v1/portfolio", "GET")
	assert.False(t, allowed)
	assert.False(t, info.Allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: false})
	for i := 0; i < 100; i++ {
		allowed, _ := l.Allow("client", "/v1/drafts", "POST")
		require.True(t, allowed)
	}
	assert.Zero(t, l.size())
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(20),
	})

	for i := 0; i < 3; i++ {
		allowed, info := l.Allow("client", "/v1/portfolio/build", "POST")
		require.True(t, allowed, "request %d", i)
		assert.Equal(t, 20, info.Limit)
	}
	allowed, _ := l.Allow("client", "/v1/portfolio/build", "POST")
	assert.False(t, allowed, "burst of 3 is exhausted")

	allowed, info := l.Allow("client", "/v1/portfolio", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestLimiter_UnlimitedOperationalEndpoints(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})

	for i := 0; i < 10; i++ {
		allowed, _ := l.Allow("client", "/health", "GET")
		require.True(t, allowed)
		allowed, _ = l.Allow("client", "/metrics", "GET")
		require.True(t, allowed)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Hour})

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("client", "/v1/portfolio", "GET"); ok {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), allowed.Load())
}

func TestLimiter_CleanupDropsIdleBuckets(t *testing.T) {
	l, c := newTestLimiter(t, &Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute, IdleTTL: time.Hour})

	l.Allow("old", "/v1/portfolio", "GET")
	c.advance(50 * time.Minute)
	l.Allow("recent", "/v1/portfolio", "GET")
	require.Equal(t, 2, l.size())

	c.advance(20 * time.Minute)
	l.cleanup()
	assert.Equal(t, 1, l.size())
}

func TestNewLimiter_NilConfig(t *testing.T) {
	l := NewLimiter(nil)
	defer l.Stop()

	allowed, info := l.Allow("client", "/v1/portfolio", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)

	l.Stop()
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/v1/drafts", Method: "POST", Limit: 1},
		{Path: "/v1/drafts/", Method: "POST", Limit: 2},
		{Path: "/v1/drafts/current/", Method: "POST", Limit: 3},
	}

	tests := []struct {
		name   string
		path   string
		method string
		want   int
	}{
		{"exact match", "/v1/drafts", "POST", 1},
		{"longest prefix", "/v1/drafts/current/messages", "POST", 3},
		{"shorter prefix", "/v1/drafts/other", "POST", 2},
		{"method mismatch", "/v1/drafts", "GET", -1},
		{"no match", "/v1/portfolio", "POST", -1},
		{"health", "/health", "GET", 0},
		{"metrics", "/metrics", "GET", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.want < 0 {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Limit)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")
	t.Setenv("RATE_LIMIT_MODEL_PER_HOUR", "7")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)
	assert.Empty(t, cfg.Blacklist)

	build := MatchEndpoint("/v1/portfolio/build", "POST", cfg.EndpointConfigs)
	require.NotNil(t, build)
	assert.Equal(t, 7, build.Limit)

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}
