package ratelimit

import (
	"context"
	"time"

	"github.com/redis/rueidis"
)

// RedisLimiter shares fixed-window counters between server instances.
type RedisLimiter struct {
	client rueidis.Client
	prefix string
	limit  int
	window time.Duration
}

func NewRedisLimiter(client rueidis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

// Allow pipelines INCR with EXPIRE NX so every hit restores a missing TTL.
// EXPIRE NX needs Redis 7.0 or newer.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := r.prefix + ":" + key

	seconds := int64(r.window / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	results := r.client.DoMulti(ctx,
		r.client.B().Incr().Key(redisKey).Build(),
		r.client.B().Expire().Key(redisKey).Seconds(seconds).Nx().Build(),
	)

	count, err := results[0].AsInt64()
	if err != nil {
		return false, err
	}
	if err := results[1].Error(); err != nil {
		return false, err
	}

	return count <= int64(r.limit), nil
}
