package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBlacklist keeps revoked jtis as blacklist:<jti> keys whose TTL
// mirrors the revoked token's remaining lifetime. Selected over the mongo
// blacklist when REDIS_ADDR is configured.
type RedisBlacklist struct {
	Client *redis.Client
}

func (r RedisBlacklist) Add(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already past its own expiry, nothing left to revoke.
		return nil
	}
	return r.Client.Set(ctx, "blacklist:"+jti, "true", ttl).Err()
}

func (r RedisBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	val, err := r.Client.Get(ctx, "blacklist:"+jti).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == "true", nil
}
