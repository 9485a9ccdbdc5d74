package egapro

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/betagouv/portail-rse-sub001/pkg/reglementation"
)

// Cache stores oracle answers. Get reports found=false on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (published, found bool, err error)
	Set(ctx context.Context, key string, published bool, ttl time.Duration) error
}

// CachedOracle answers from cache before asking the wrapped oracle. Only
// successful answers are cached; a positive answer is kept for ttl, a
// negative one for a tenth of it so a fresh publication shows up quickly.
// Cache failures are logged and bypassed.
type CachedOracle struct {
	next   reglementation.FreshnessOracle
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedOracle(next reglementation.FreshnessOracle, cache Cache, ttl time.Duration) *CachedOracle {
	return &CachedOracle{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: slog.Default().With("component", "egapro-cache"),
	}
}

func cacheKey(siren string, year int) string {
	return fmt.Sprintf("egapro:declaration:%s:%d", siren, year)
}

func (o *CachedOracle) HasPublishedDeclaration(ctx context.Context, siren string, year int) (bool, error) {
	key := cacheKey(siren, year)
	published, found, err := o.cache.Get(ctx, key)
	if err != nil {
		o.logger.WarnContext(ctx, "oracle cache read failed", "key", key, "error", err)
	} else if found {
		return published, nil
	}

	published, err = o.next.HasPublishedDeclaration(ctx, siren, year)
	if err != nil {
		return false, err
	}

	ttl := o.ttl
	if !published {
		ttl /= 10
	}
	if ttl > 0 {
		if err := o.cache.Set(ctx, key, published, ttl); err != nil {
			o.logger.WarnContext(ctx, "oracle cache write failed", "key", key, "error", err)
		}
	}
	return published, nil
}

// RedisCache is a Cache backed by Redis string keys holding "1" or "0".
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache connects to a single Redis node.
func NewRedisCache(addr, password string, db int) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{client: rdb}
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(c redis.UniversalClient) *RedisCache {
	return &RedisCache{client: c}
}

func (r *RedisCache) Get(ctx context.Context, key string) (bool, bool, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("redis cache get: %w", err)
	}
	return v == "1", true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, published bool, ttl time.Duration) error {
	v := "0"
	if published {
		v = "1"
	}
	if err := r.client.Set(ctx, key, v, ttl).Err(); err != nil {
		return fmt.Errorf("redis cache set: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (r *RedisCache) Close() error { return r.client.Close() }
