// Package lock provides the cross-instance advisory lock taken around payment posting.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrNotObtained is returned when another holder owns the key.
var ErrNotObtained = errors.New("lock not obtained")

// Releaser releases a held lock.
type Releaser interface {
	Release(ctx context.Context) error
}

// Locker obtains short-lived named locks.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Releaser, error)
}

// RedisLocker is a Locker backed by bsm/redislock.
type RedisLocker struct {
	client *redislock.Client
	retry  redislock.RetryStrategy
}

// NewRedisLocker creates a locker on an existing redis client. A contended key is
// retried briefly before giving up.
func NewRedisLocker(rdb redis.UniversalClient) *RedisLocker {
	return &RedisLocker{
		client: redislock.New(rdb),
		retry:  redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 5),
	}
}

// Connect dials redis and verifies the connection.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return rdb, nil
}

func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Releaser, error) {
	held, err := l.client.Obtain(ctx, key, ttl, &redislock.Options{RetryStrategy: l.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}
	return held, nil
}

// NoopLocker always succeeds. It is used when redis is not configured; row locks in
// Postgres still serialize writers.
type NoopLocker struct{}

type noopReleaser struct{}

func (noopReleaser) Release(context.Context) error { return nil }

func (NoopLocker) Obtain(context.Context, string, time.Duration) (Releaser, error) {
	return noopReleaser{}, nil
}

// InvoicePaymentKey is the lock key for posting payments against one invoice.
func InvoicePaymentKey(tenantID, invoiceID string) string {
	return "invoice-payment:" + tenantID + ":" + invoiceID
}
