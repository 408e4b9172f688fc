package port

import (
	"context"
	"time"
)

type CacheRepository interface {
	// Get returns the cached value and whether the key was present
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a serialized value with an expiry
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes one or more keys; missing keys are not an error
	Delete(ctx context.Context, keys ...string) error
}
