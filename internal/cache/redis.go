package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skillprep/assess/internal/logger"
)

// RedisStore is a Store backed by a shared Redis instance, for
// deployments where multiple engine processes serve the same question
// pool. All operations are best-effort: Redis being down degrades to
// misses, never to errors.
type RedisStore struct {
	client *redis.Client
	log    logger.Logger
}

// NewRedisStore connects to Redis at addr. The connection is verified
// with a ping so a misconfigured address surfaces at startup rather
// than as silent misses.
func NewRedisStore(ctx context.Context, addr, password string, db int, log logger.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisStore{client: client, log: log.Named("rediscache")}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn(ctx, "redis get failed", logger.String("key", key), logger.Error(err))
		}
		return nil, false
	}
	return val, true
}

func (r *RedisStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := r.client.Set(ctx, key, val, ttl).Err(); err != nil {
		r.log.Warn(ctx, "redis set failed", logger.String("key", key), logger.Error(err))
	}
}

func (r *RedisStore) Invalidate(ctx context.Context, key string) {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.log.Warn(ctx, "redis delete failed", logger.String("key", key), logger.Error(err))
	}
}

// Close releases the underlying client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
