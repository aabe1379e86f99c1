// Package cache stores short-lived results (processed news lists) in process
// memory or in Redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultNewsTTL is how long processed news for a company stays cached.
const DefaultNewsTTL = 15 * time.Minute

// Cache is a byte-oriented key/value store with per-key expiry.
// Get reports a miss with ok=false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NewsKey is the cache key for a company's processed news list.
func NewsKey(companyID int64, maxArticles int) string {
	return fmt.Sprintf("news:%d:%d", companyID, maxArticles)
}

// GetJSON reads key and decodes it into T. A value that no longer decodes is
// dropped and reported as a miss.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, bool, error) {
	var v T
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return v, false, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		_ = c.Delete(ctx, key)
		return v, false, nil
	}
	return v, true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}
	return c.Set(ctx, key, data, ttl)
}
