package lock

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// RedisLocker holds locks in Redis so they span API instances
type RedisLocker struct {
	client *redislock.Client
}

// NewRedisLocker creates a locker on top of an existing Redis client
func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb)}
}

func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	lk, err := l.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrNotObtained
	}
	if err != nil {
		return nil, err
	}
	return &redisLock{lock: lk}, nil
}

type redisLock struct {
	lock *redislock.Lock
}

func (l *redisLock) Release(ctx context.Context) error {
	err := l.lock.Release(ctx)
	if errors.Is(err, redislock.ErrLockNotHeld) {
		// Expired before release; nothing left to free.
		return nil
	}
	return err
}
