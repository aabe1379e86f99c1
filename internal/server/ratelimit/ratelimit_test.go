package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// testLimiter returns a limiter without a cleanup goroutine and a handle to
// move its clock, which starts at epoch.
func testLimiter(cfg *Config) (*Limiter, func(time.Duration)) {
	cfg.CleanupInterval = 0
	l := NewLimiter(cfg)
	now := epoch
	l.now = func() time.Time { return now }
	return l, func(d time.Duration) { now = now.Add(d) }
}

func newsConfig() *Config {
	cfg := DefaultConfig()
	cfg.EndpointConfigs = []EndpointConfig{
		{Path: "/news", Method: "POST", Limit: 60, Window: time.Hour, Burst: 3},
		{Path: "/articles/", Method: "POST", Limit: 10, Window: time.Minute, Burst: 1},
	}
	cfg.DefaultLimit = 2
	return cfg
}

func TestLimiter_BurstThenDeny(t *testing.T) {
	l, _ := testLimiter(newsConfig())

	for want := 2; want >= 0; want-- {
		allowed, info := l.Allow("10.0.0.1", "/news", "POST")
		require.True(t, allowed)
		assert.Equal(t, want, info.Remaining)
		assert.Equal(t, 60, info.Limit)
	}

	allowed, info := l.Allow("10.0.0.1", "/news", "POST")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.InDelta(t, 60, info.RetryAfter.Seconds(), 0.01)
	assert.InDelta(t, 180, info.ResetTime.Sub(epoch).Seconds(), 0.01)
}

func TestLimiter_Refill(t *testing.T) {
	l, advance := testLimiter(newsConfig())

	for range 3 {
		l.Allow("10.0.0.1", "/news", "POST")
	}
	allowed, _ := l.Allow("10.0.0.1", "/news", "POST")
	require.False(t, allowed)

	advance(61 * time.Second)
	allowed, _ = l.Allow("10.0.0.1", "/news", "POST")
	assert.True(t, allowed)

	allowed, _ = l.Allow("10.0.0.1", "/news", "POST")
	assert.False(t, allowed)
}

func TestLimiter_ClientsAreIndependent(t *testing.T) {
	l, _ := testLimiter(newsConfig())

	allowed, _ := l.Allow("a", "/articles/1/generate", "POST")
	require.True(t, allowed)
	allowed, _ = l.Allow("a", "/articles/1/generate", "POST")
	assert.False(t, allowed)

	allowed, _ = l.Allow("b", "/articles/1/generate", "POST")
	assert.True(t, allowed)
}

func TestLimiter_PrefixSharesBucket(t *testing.T) {
	l, _ := testLimiter(newsConfig())

	allowed, _ := l.Allow("a", "/articles/1/generate", "POST")
	require.True(t, allowed)
	allowed, _ = l.Allow("a", "/articles/2/generate", "POST")
	assert.False(t, allowed)
}

func TestLimiter_DefaultLimit(t *testing.T) {
	l, _ := testLimiter(newsConfig())

	allowed, info := l.Allow("a", "/companies", "GET")
	require.True(t, allowed)
	assert.Equal(t, 2, info.Limit)
	allowed, _ = l.Allow("a", "/companies/3", "GET")
	require.True(t, allowed)
	allowed, _ = l.Allow("a", "/companies", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Bypass(t *testing.T) {
	cfg := newsConfig()
	cfg.Whitelist = map[string]bool{"trusted": true}
	cfg.Blacklist = map[string]bool{"banned": true}
	l, _ := testLimiter(cfg)

	for range 10 {
		allowed, _ := l.Allow("trusted", "/news", "POST")
		assert.True(t, allowed)
		allowed, _ = l.Allow("anyone", "/health", "GET")
		assert.True(t, allowed)
		allowed, _ = l.Allow("anyone", "/metrics", "GET")
		assert.True(t, allowed)
	}

	allowed, _ := l.Allow("banned", "/health", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	cfg := newsConfig()
	cfg.Enabled = false
	l, _ := testLimiter(cfg)

	for range 10 {
		allowed, info := l.Allow("a", "/news", "POST")
		assert.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
}

func TestLimiter_SweepDropsIdleBuckets(t *testing.T) {
	l, advance := testLimiter(newsConfig())

	l.Allow("old", "/news", "POST")
	advance(2 * time.Hour)
	l.Allow("fresh", "/news", "POST")

	l.sweep()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Len(t, l.buckets, 1)
	assert.Contains(t, l.buckets, "fresh:POST:/news")
}

func TestLimiter_Concurrent(t *testing.T) {
	cfg := newsConfig()
	cfg.EndpointConfigs[0].Burst = 50
	l, _ := testLimiter(cfg)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow(fmt.Sprintf("c%d", i%2), "/news", "POST"); ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, granted)
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	l := NewLimiter(nil)
	l.Stop()
	l.Stop()
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		path, method string
		wantPath     string
		wantNil      bool
	}{
		{path: "/news", method: "POST", wantPath: "/news"},
		{path: "/news/stream", method: "POST", wantPath: "/news/stream"},
		{path: "/articles/9/generate", method: "POST", wantPath: "/articles/"},
		{path: "/articles/9", method: "GET", wantNil: true},
		{path: "/companies", method: "GET", wantNil: true},
		{path: "/health", method: "GET", wantPath: ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantPath, got.Path)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	env := map[string]string{
		"RATE_LIMIT_ENABLED":        "false",
		"RATE_LIMIT_DEFAULT_LIMIT":  "42",
		"RATE_LIMIT_DEFAULT_WINDOW": "30s",
		"RATE_LIMIT_WHITELIST":      "127.0.0.1, ::1",
		"RATE_LIMIT_BLACKLIST":      "",
	}
	cfg := LoadConfig(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	assert.False(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.DefaultWindow)
	assert.Equal(t, map[string]bool{"127.0.0.1": true, "::1": true}, cfg.Whitelist)
	assert.Empty(t, cfg.Blacklist)
	assert.NotEmpty(t, cfg.EndpointConfigs)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig(func(string) (string, bool) { return "", false })

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 600, cfg.DefaultLimit)
	assert.Equal(t, time.Minute, cfg.DefaultWindow)
}
