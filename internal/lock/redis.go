// Package lock provides a short-lived per-key Redis lock used to narrow the
// booking check-then-act window. It degrades to lock-free operation when
// Redis is unreachable.
package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisLocker takes best-effort advisory locks with SETNX + TTL. The token
// stored under the key lets release delete only its own lock, never one that
// expired and was re-acquired by another commit.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

func NewRedisLocker(client *redis.Client, ttl time.Duration, logger *zerolog.Logger) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, logger: logger}
}

// Acquire tries to take the lock for key. ok=false means another holder owns
// it. A Redis error is not a lock failure: the locker logs it and lets the
// caller proceed unlocked, because losing the lock must never block bookings.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (release func(), ok bool) {
	token := uuid.NewString()

	set, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		l.logger.Warn().Err(err).Str("key", key).Msg("redis lock unavailable, proceeding without lock")
		return func() {}, true
	}
	if !set {
		return nil, false
	}

	return func() {
		// Compare-and-delete so a lock that expired mid-commit is left alone.
		current, err := l.client.Get(context.Background(), key).Result()
		if err != nil || current != token {
			return
		}
		if err := l.client.Del(context.Background(), key).Err(); err != nil {
			l.logger.Warn().Err(err).Str("key", key).Msg("redis lock release failed")
		}
	}, true
}
