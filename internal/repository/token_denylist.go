package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokenDenylist stores revoked JWT IDs until their natural expiry.
type RedisTokenDenylist struct {
	client *redis.Client
}

// NewRedisTokenDenylist constructs the denylist.
func NewRedisTokenDenylist(client *redis.Client) *RedisTokenDenylist {
	return &RedisTokenDenylist{client: client}
}

func denylistKey(jti string) string {
	return "auth:revoked:" + jti
}

// Revoke marks the token ID revoked for ttl.
func (d *RedisTokenDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return d.client.Set(ctx, denylistKey(jti), 1, ttl).Err()
}

// IsRevoked reports whether the token ID was revoked.
func (d *RedisTokenDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.client.Exists(ctx, denylistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
