package persistence

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const registrationLockPrefix = "lock:register:"

// RedisLocker hands out short-lived keyed locks with SET NX.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLocker builds a locker whose locks expire after ttl.
func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{client: client, ttl: ttl}
}

// Acquire returns false when key is already held by someone else.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (bool, error) {
	return l.client.SetNX(ctx, registrationLockPrefix+key, time.Now().UTC().Format(time.RFC3339Nano), l.ttl).Result()
}

// Release drops the lock early.
func (l *RedisLocker) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, registrationLockPrefix+key).Err()
}
