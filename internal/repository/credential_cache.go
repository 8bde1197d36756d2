package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/remotereps/agent-onboarding/internal/domain"
)

// CredentialCache is the time-boxed role cache consulted before any remote
// resolution. Implementations must never return an entry older than the
// configured validity window.
type CredentialCache interface {
	// Get returns the cached role and its age. ok is false when no valid
	// entry exists for the user.
	Get(ctx context.Context, userID string) (role domain.Role, age time.Duration, ok bool)
	Put(ctx context.Context, userID string, role domain.Role) error
	Invalidate(ctx context.Context, userID string) error
}

type cachedCredentials struct {
	UserID      string      `json:"user_id"`
	Credentials domain.Role `json:"credentials"`
	CachedAt    time.Time   `json:"cached_at"`
}

type redisCredentialCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCredentialCache returns a Redis-backed cache with the given
// validity window.
func NewRedisCredentialCache(client *redis.Client, ttl time.Duration) CredentialCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &redisCredentialCache{client: client, ttl: ttl}
}

func credentialKey(userID string) string {
	return "credentials:" + userID
}

func (c *redisCredentialCache) Get(ctx context.Context, userID string) (domain.Role, time.Duration, bool) {
	raw, err := c.client.Get(ctx, credentialKey(userID)).Bytes()
	if err != nil {
		return "", 0, false
	}
	var entry cachedCredentials
	if err := json.Unmarshal(raw, &entry); err != nil {
		return "", 0, false
	}
	age := time.Since(entry.CachedAt)
	// Redis expiry already bounds the entry; the timestamp check guards
	// against clock drift and stale writes.
	if entry.UserID != userID || age >= c.ttl {
		return "", 0, false
	}
	return entry.Credentials, age, true
}

func (c *redisCredentialCache) Put(ctx context.Context, userID string, role domain.Role) error {
	raw, err := json.Marshal(cachedCredentials{
		UserID:      userID,
		Credentials: role,
		CachedAt:    time.Now(),
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, credentialKey(userID), raw, c.ttl).Err()
}

func (c *redisCredentialCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, credentialKey(userID)).Err()
}
