package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sMiccu/shoporder/internal/usecase"
)

// RedisOrderCache mirrors the latest known order status under
// order:status:<id>. Consumers treat it as a hint; the repository stays the
// source of truth.
type RedisOrderCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisOrderCache(rdb *redis.Client, ttl time.Duration) *RedisOrderCache {
	return &RedisOrderCache{rdb: rdb, ttl: ttl}
}

func (r *RedisOrderCache) SetStatus(ctx context.Context, orderID string, status string) error {
	return r.rdb.Set(ctx, "order:status:"+orderID, status, r.ttl).Err()
}

func (r *RedisOrderCache) GetStatus(ctx context.Context, orderID string) (string, bool, error) {
	val, err := r.rdb.Get(ctx, "order:status:"+orderID).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

var _ usecase.OrderCache = (*RedisOrderCache)(nil)
