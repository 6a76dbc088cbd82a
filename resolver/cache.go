package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"albumbot/config"
	"albumbot/logger"
)

// NewRedisClient connects to Redis using the application configuration and
// verifies the connection with a ping.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// cacheClient is the subset of redis.Client the cache uses.
type cacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachedResolver decorates a Resolver with a Redis lookup cache. Lookup
// results rarely change, so repeated registrations of the same link skip the
// outbound call. Cache failures degrade to the wrapped resolver; they are
// never surfaced to the conversation.
type CachedResolver struct {
	next Resolver
	rdb  cacheClient
	ttl  time.Duration
}

// NewCachedResolver wraps next with a Redis cache.
func NewCachedResolver(next Resolver, rdb cacheClient, ttl time.Duration) *CachedResolver {
	return &CachedResolver{next: next, rdb: rdb, ttl: ttl}
}

func cacheKey(rawURL string) string {
	return "resolve:" + rawURL
}

// Resolve returns a cached resolution when present, otherwise delegates and
// stores the result. ErrNoMatch is not cached: an unresolvable link may
// become resolvable once the platform catalogs it.
func (c *CachedResolver) Resolve(ctx context.Context, rawURL string) (*Resolution, error) {
	key := cacheKey(rawURL)

	cached, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		var res Resolution
		if err := json.Unmarshal([]byte(cached), &res); err == nil {
			logger.Debug("resolver cache hit", logger.String("url", rawURL))
			return &res, nil
		}
		logger.Warn("dropping undecodable cache entry", logger.String("key", key))
		c.rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		logger.Warn("resolver cache read failed", logger.ErrorField(err))
	}

	res, err := c.next.Resolve(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(res)
	if err != nil {
		return res, nil
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Warn("resolver cache write failed", logger.ErrorField(err))
	}
	return res, nil
}
