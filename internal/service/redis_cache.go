package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/baryc/quote-service/internal/metrics"
)

const (
	// DefaultRedisKeyPrefix namespaces quote results.
	DefaultRedisKeyPrefix = "quote:"
	redisOpTimeout = 200 * time.Millisecond
	redisScanBatch = 500
)

// RedisCache is a cache.Cache backed by Redis, shared by every instance of
// the service. Redis errors are logged and treated as misses so that a
// cache outage never fails a quote.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache creates a Redis-backed cache.
func NewRedisCache(addr, password string, db int, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			PoolSize:     50,
			MinIdleConns: 5,
		}),
		ttl:    ttl,
		prefix: DefaultRedisKeyPrefix,
	}
}

// WithKeyPrefix sets the namespace of the keys this cache reads, writes and
// clears.
func (r *RedisCache) WithKeyPrefix(prefix string) *RedisCache {
	if prefix != "" {
		r.prefix = prefix
	}
	return r
}

// Ping checks connectivity.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Get returns the cached bytes for key.
func (r *RedisCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("Redis cache get failed")
			metrics.RecordCacheOperation("get", "error")
			return nil, false
		}
		metrics.RecordCacheOperation("get", "miss")
		return nil, false
	}
	metrics.RecordCacheOperation("get", "hit")
	return data, true
}

// Set stores value under key with the cache TTL.
func (r *RedisCache) Set(key string, value []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := r.client.Set(ctx, r.prefix+key, value, r.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Redis cache set failed")
		metrics.RecordCacheOperation("set", "error")
		return
	}
	metrics.RecordCacheOperation("set", "success")
}

// Invalidate deletes key.
func (r *RedisCache) Invalidate(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Redis cache delete failed")
		return
	}
	metrics.RecordCacheOperation("invalidate", "success")
}

// Clear deletes every key under the prefix. Other keys in the database are left alone.
func (r *RedisCache) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", redisScanBatch).Result()
		if err != nil {
			log.Warn().Err(err).Msg("Redis cache scan failed")
			return
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				log.Warn().Err(err).Msg("Redis cache clear failed")
				return
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	metrics.RecordCacheOperation("clear", "success")
}

// Stop closes the Redis connection pool.
func (r *RedisCache) Stop() {
	if err := r.client.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close Redis client")
	}
}
