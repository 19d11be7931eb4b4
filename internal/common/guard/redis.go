package guard

import (
	"context"
	"time"

	"github.com/google/uuid"

	"maglinc-site/internal/common/database"
)

const redisKeyPrefix = "maglinc:inflight:"

// Redis holds keys with SET NX so the flag is shared across site replicas.
// The stored value is the holder's token.
type Redis struct {
	client  *database.RedisClient
	ttl     time.Duration
	tokenFn func() string
}

func NewRedis(client *database.RedisClient, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl, tokenFn: uuid.NewString}
}

func (r *Redis) Acquire(ctx context.Context, key string) (string, bool, error) {
	token := r.tokenFn()
	ok, err := r.client.SetNX(ctx, redisKeyPrefix+key, token, r.ttl)
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (r *Redis) Release(ctx context.Context, key, token string) error {
	_, err := r.client.DelIfValue(ctx, redisKeyPrefix+key, token)
	return err
}
