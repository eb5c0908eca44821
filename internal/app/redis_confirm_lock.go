/**
 * @description
 * Redis-backed implementation of ConfirmLock. A confirm holds a short-lived
 * SETNX key per intention so concurrent confirms across instances fail fast
 * instead of both reaching the database. The TTL bounds how long a crashed
 * holder can block retries.
 *
 * The lock is an optimization, not the correctness mechanism: the
 * conditional status update in the store is what guarantees single commit.
 */

package app

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const confirmLockTTL = 30 * time.Second

// RedisConfirmLock serializes confirms per intention via Redis.
type RedisConfirmLock struct {
	client *redis.Client
}

// NewRedisConfirmLock creates a lock backed by the given client.
func NewRedisConfirmLock(client *redis.Client) *RedisConfirmLock {
	return &RedisConfirmLock{client: client}
}

// Acquire attempts to take the lock for the intention. A Redis failure is
// returned so the caller can fall through to the database guard rather than
// rejecting the confirm.
func (l *RedisConfirmLock) Acquire(ctx context.Context, intentionID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, "confirm_lock:"+intentionID, 1, confirmLockTTL).Result()
	if err != nil {
		log.Printf("level=warn component=confirm_lock msg=\"redis unavailable, skipping lock\" err=%v", err)
		return false, err
	}
	return ok, nil
}

// Release drops the lock early instead of waiting out the TTL.
func (l *RedisConfirmLock) Release(ctx context.Context, intentionID string) {
	if err := l.client.Del(ctx, "confirm_lock:"+intentionID).Err(); err != nil {
		log.Printf("level=warn component=confirm_lock msg=\"lock release failed\" err=%v", err)
	}
}
