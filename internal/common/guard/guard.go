// Package guard holds the "submitting" flag that keeps a form from being
// submitted again while its request is still in flight.
package guard

import (
	"context"
	"fmt"
	"time"

	"maglinc-site/internal/common/config"
	"maglinc-site/internal/common/database"
)

// Guard grants at most one holder per key at a time.
type Guard interface {
	// Acquire reports false when key is already held. The returned token
	// identifies this hold and must be passed to Release.
	Acquire(ctx context.Context, key string) (token string, ok bool, err error)
	// Release drops the hold only if token still owns it, so a holder
	// whose hold expired cannot clear a newer one.
	Release(ctx context.Context, key, token string) error
}

// New builds the guard selected by cfg.Backend. redis may be nil when the
// backend is memory.
func New(cfg config.GuardConfig, redis *database.RedisClient) (Guard, error) {
	ttl := config.GetDuration(cfg.TTL)
	switch cfg.Backend {
	case "", "memory":
		return NewLocal(ttl), nil
	case "redis":
		if redis == nil {
			return nil, fmt.Errorf("redis guard requires a redis client")
		}
		return NewRedis(redis, ttl), nil
	default:
		return nil, fmt.Errorf("unknown guard backend %q", cfg.Backend)
	}
}

// TTLFor returns a hold time covering a request of the given timeout. A zero
// timeout means the request is unbounded, so fallback is used.
func TTLFor(requestTimeout, fallback time.Duration) time.Duration {
	if requestTimeout <= 0 {
		return fallback
	}
	return requestTimeout + 5*time.Second
}
