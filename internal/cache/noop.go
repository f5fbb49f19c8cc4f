package cache

import (
	"context"
	"time"
)

// NoOpCache is a cache implementation that does nothing. Used when no
// Redis is configured - all operations succeed but every lookup is a
// miss, so each request goes to the generation provider.
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache instance
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// GetDraft always returns nil (cache miss)
func (c *NoOpCache) GetDraft(ctx context.Context, key string) (*Draft, error) {
	return nil, nil
}

// SetDraft does nothing and always succeeds
func (c *NoOpCache) SetDraft(ctx context.Context, key string, draft *Draft, ttl time.Duration) error {
	return nil
}

// Close does nothing and always succeeds
func (c *NoOpCache) Close() error {
	return nil
}
