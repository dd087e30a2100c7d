package token

import (
	"context"
	"time"

	"eventhub/internal/platform/redis"
)

const revocationKeyPrefix = "eventhub:revoked:"

// RedisRevocationList shares the revocation list across instances. Keys
// expire with the token, so the set never grows unbounded.
type RedisRevocationList struct {
	client *redis.Client
}

func NewRedisRevocationList(client *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{client: client}
}

func (l *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	return l.client.Set(ctx, revocationKeyPrefix+jti, "1", ttl).Err()
}

func (l *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := l.client.Exists(ctx, revocationKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
