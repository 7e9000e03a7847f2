package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrBusy means another operation currently holds the lock for the same key.
var ErrBusy = errors.New("lock is held by another operation")

// Locker provides mutual exclusion per key. Upload and forecast generation
// for the same user must not interleave, so both take the user's lock.
type Locker interface {
	// Acquire takes the lock for key or returns ErrBusy without waiting.
	// The returned release function must be called when the work is done.
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

type redisLocker struct {
	client *redislock.Client
}

// NewRedisLocker builds a Locker backed by redislock, for multi-instance
// deployments.
func NewRedisLocker(rdb *redis.Client) Locker {
	return &redisLocker{client: redislock.New(rdb)}
}

func (l *redisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	lk, err := l.client.Obtain(ctx, key, ttl, nil)
	if err == redislock.ErrNotObtained {
		return nil, ErrBusy
	}
	if err != nil {
		return nil, err
	}
	return func() {
		// Best effort: the TTL reclaims the lock if release fails.
		_ = lk.Release(context.Background())
	}, nil
}

type memoryLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemoryLocker builds an in-process Locker, used when no Redis address is
// configured. Only safe for single-instance deployments.
func NewMemoryLocker() Locker {
	return &memoryLocker{held: make(map[string]struct{})}
}

func (l *memoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return nil, ErrBusy
	}
	l.held[key] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}

	// TTL guard mirrors the redis behaviour so a leaked lock cannot wedge
	// a user's account forever.
	timer := time.AfterFunc(ttl, release)
	return func() {
		timer.Stop()
		release()
	}, nil
}
