package redisx

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Mutex is a best-effort distributed lock over SET NX with a TTL. Good enough
// to keep two sweeper replicas off the same pass; not a fencing lock.
type Mutex struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewMutex(rdb *redis.Client, key string, ttl time.Duration) *Mutex {
	return &Mutex{rdb: rdb, key: key, ttl: ttl}
}

// TryLock acquires the lock if free. Returns false when another holder owns
// it or redis is unreachable; callers should treat both as "skip this pass".
func (m *Mutex) TryLock(ctx context.Context) (bool, error) {
	ok, err := m.rdb.SetNX(ctx, m.key, time.Now().UTC().Format(time.RFC3339), m.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (m *Mutex) Unlock(ctx context.Context) error {
	return m.rdb.Del(ctx, m.key).Err()
}
