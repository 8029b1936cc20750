package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "auth:revoked:v1:"

// Revoker records token ids that must no longer be honoured.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// Consume revokes tokenID and reports whether this call was the one
	// that did it. Concurrent callers for the same id see exactly one true.
	Consume(ctx context.Context, tokenID string, expiresAt time.Time) (bool, error)
}

// RedisRevoker keeps revoked token ids in Redis until the token would have
// expired anyway.
type RedisRevoker struct {
	cache *redis.Client
	now   func() time.Time
}

// NewRedisRevoker builds a Redis-backed denylist.
func NewRedisRevoker(cache *redis.Client) *RedisRevoker {
	return &RedisRevoker{cache: cache, now: time.Now}
}

// Revoke denylists tokenID until expiresAt. Already expired tokens are skipped.
func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.cache.Set(ctx, revokedPrefix+tokenID, 1, ttl).Err()
}

// IsRevoked reports whether tokenID has been denylisted.
func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.cache.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Consume claims tokenID with SET NX so only the first caller wins. Expired
// tokens are never claimable.
func (r *RedisRevoker) Consume(ctx context.Context, tokenID string, expiresAt time.Time) (bool, error) {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return false, nil
	}
	return r.cache.SetNX(ctx, revokedPrefix+tokenID, 1, ttl).Result()
}
