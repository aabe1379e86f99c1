package generation

import (
	"context"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/jonathan/company-pulse/internal/fanout"
)

// Health check defaults.
const (
	DefaultCooldown      = 5 * time.Minute
	DefaultHealthTimeout = 10 * time.Second
)

// ProviderHealth is the last known state of one provider.
type ProviderHealth struct {
	Provider       string        `json:"provider"`
	Available      bool          `json:"available"`
	Latency        time.Duration `json:"latency"`
	CheckedAt      time.Time     `json:"checked_at"`
	UnhealthyUntil time.Time     `json:"unhealthy_until,omitempty"`
	LastError      string        `json:"last_error,omitempty"`
}

// HealthCache records per-provider availability and latency. Updates are
// last-write-wins per provider.
type HealthCache struct {
	mu       sync.RWMutex
	entries  map[string]ProviderHealth
	cooldown time.Duration
	now      func() time.Time
}

// NewHealthCache creates a cache. A non-positive cooldown uses DefaultCooldown.
func NewHealthCache(cooldown time.Duration) *HealthCache {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &HealthCache{
		entries:  make(map[string]ProviderHealth),
		cooldown: cooldown,
		now:      time.Now,
	}
}

// RecordSuccess marks a provider healthy with the observed latency.
func (h *HealthCache) RecordSuccess(provider string, latency time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[provider] = ProviderHealth{
		Provider:  provider,
		Available: true,
		Latency:   latency,
		CheckedAt: h.now(),
	}
}

// RecordFailure marks a provider unhealthy for the cooldown window.
func (h *HealthCache) RecordFailure(provider string, latency time.Duration, err error) {
	now := h.now()
	entry := ProviderHealth{
		Provider:       provider,
		Latency:        latency,
		CheckedAt:      now,
		UnhealthyUntil: now.Add(h.cooldown),
	}
	if err != nil {
		entry.LastError = err.Error()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[provider] = entry
}

// Get returns the cached state of a provider.
func (h *HealthCache) Get(provider string) (ProviderHealth, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	entry, ok := h.entries[provider]
	return entry, ok
}

// Snapshot returns all cached states sorted by provider name.
func (h *HealthCache) Snapshot() []ProviderHealth {
	h.mu.RLock()
	out := make([]ProviderHealth, 0, len(h.entries))
	for _, e := range h.entries {
		out = append(out, e)
	}
	h.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out
}

// InCooldown reports whether provider failed recently.
func (h *HealthCache) InCooldown(provider string) bool {
	entry, ok := h.Get(provider)
	return ok && h.now().Before(entry.UnhealthyUntil)
}

// CheckAll probes every provider concurrently and records the outcomes.
// One provider failing or timing out never affects the others.
func (h *HealthCache) CheckAll(ctx context.Context, providers []Provider, timeout time.Duration) []ProviderHealth {
	if timeout <= 0 {
		timeout = DefaultHealthTimeout
	}

	tasks := make([]fanout.Task[struct{}], len(providers))
	for i, p := range providers {
		tasks[i] = fanout.Task[struct{}]{
			Name: p.Name(),
			Run: func(ctx context.Context) (struct{}, error) {
				return struct{}{}, p.CheckHealth(ctx)
			},
		}
	}

	results := fanout.Run(ctx, timeout, tasks)
	out := make([]ProviderHealth, len(results))
	for i, r := range results {
		if r.Err != nil {
			log.Printf("[GENERATION] Health check for %s failed: %v", r.Name, r.Err)
			h.RecordFailure(r.Name, r.Duration, asProviderError(r.Name, r.Err))
		} else {
			h.RecordSuccess(r.Name, r.Duration)
		}
		out[i], _ = h.Get(r.Name)
	}
	return out
}

// Order returns the providers to try, best first. Providers without
// credentials are left out. Usable providers come first, sorted by priority
// and then latency (unknown latency last); providers in a cooldown window
// come after them.
func (h *HealthCache) Order(providers []Provider) []Provider {
	type ranked struct {
		p        Provider
		cooling  bool
		latency  time.Duration
		position int
	}

	candidates := make([]ranked, 0, len(providers))
	for i, p := range providers {
		if !p.Available() {
			continue
		}
		r := ranked{p: p, latency: time.Duration(math.MaxInt64), position: i}
		if entry, ok := h.Get(p.Name()); ok {
			r.cooling = h.now().Before(entry.UnhealthyUntil)
			if entry.Available {
				r.latency = entry.Latency
			}
		}
		candidates = append(candidates, r)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.cooling != b.cooling {
			return !a.cooling
		}
		if a.p.Priority() != b.p.Priority() {
			return a.p.Priority() < b.p.Priority()
		}
		if a.latency != b.latency {
			return a.latency < b.latency
		}
		return a.position < b.position
	})

	out := make([]Provider, len(candidates))
	for i, c := range candidates {
		out[i] = c.p
	}
	return out
}
