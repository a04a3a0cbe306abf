package ports

import (
	"context"
	"time"
)

// Cache is the key/value store shared by dedup, cooldowns and status
// caching. Backed by Redis, with an in-memory fallback.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}
