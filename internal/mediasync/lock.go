package mediasync

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker is per-record mutual exclusion around a sync attempt. Losing the
// race means another attempt is in flight: the loser skips, it does not wait.
type Locker interface {
	// TryLock returns a release func and true if the key was acquired.
	TryLock(ctx context.Context, key string) (func(), bool)
}

// KeyedLocker is the in-process Locker for single-binary deployments and
// tests.
type KeyedLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{held: make(map[string]struct{})}
}

func (l *KeyedLocker) TryLock(_ context.Context, key string) (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, taken := l.held[key]; taken {
		return nil, false
	}
	l.held[key] = struct{}{}

	return func() {
		l.mu.Lock()
		delete(l.held, key)
		l.mu.Unlock()
	}, true
}

const redisLockPrefix = "brewlog:mediasync:lock:"

// RedisLocker holds the lock as a short-TTL key so a crashed holder cannot
// wedge a record forever. A Redis failure fails open: the sequential
// single-writer assumption still holds within one process, and the guard is
// only defense against duplicate triggers.
type RedisLocker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{rdb: rdb, ttl: ttl}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string) (func(), bool) {
	k := redisLockPrefix + key

	ok, err := l.rdb.SetNX(ctx, k, "1", l.ttl).Result()
	if err != nil {
		return func() {}, true
	}
	if !ok {
		return nil, false
	}

	return func() {
		_ = l.rdb.Del(context.Background(), k).Err()
	}, true
}
