package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps revocation entries in Redis, one key per jti with the
// remaining token lifetime as expiry. Suitable when several services need
// to observe the same revocations.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	ttl := clampTTL(expiresAt)
	if ttl == 0 {
		// The token is past its natural expiry: signature verification
		// already rejects it, an entry would only linger. Nothing to store.
		return true, nil
	}

	// SET NX: false means the jti was already revoked.
	ok, err := s.client.SetNX(ctx, revokedKeyPrefix+jti, "", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("revoking token %s: %w", jti, err)
	}
	return ok, nil
}

func (s *RedisStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
