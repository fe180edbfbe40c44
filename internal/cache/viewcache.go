package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/homecooks/profitboard/internal/config"
)

const (
	viewKeyPrefix  = "profitboard:view"
	scanBatchSize  = 100
	defaultViewTTL = 2 * time.Minute
)

// ViewCache memoizes fully-rendered view payloads so repeated dashboard
// renders of the same filter skip recomputation entirely. Keys carry the
// cache generation, so a generation bump orphans every previous entry even
// before InvalidateAll reaps them.
type ViewCache interface {
	Get(ctx context.Context, channel string, generation uint64, filterKey string) ([]byte, bool, error)
	Set(ctx context.Context, channel string, generation uint64, filterKey string, payload []byte) error
	InvalidateAll(ctx context.Context) error
}

type redisViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopViewCache struct{}

// NewViewCache builds a Redis-backed view cache, or a noop when disabled.
func NewViewCache(cfg config.CacheConfig) (ViewCache, error) {
	if !cfg.ViewCacheEnabled {
		return &noopViewCache{}, nil
	}

	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.ViewTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultViewTTL
	}
	return &redisViewCache{client: client, ttl: ttl}, nil
}

// NewNoopViewCache returns a view cache that never hits.
func NewNoopViewCache() ViewCache { return &noopViewCache{} }

// NewRedisViewCache wraps an existing client (used by tests).
func NewRedisViewCache(client *redis.Client, ttl time.Duration) ViewCache {
	if ttl <= 0 {
		ttl = defaultViewTTL
	}
	return &redisViewCache{client: client, ttl: ttl}
}

func buildViewKey(channel string, generation uint64, filterKey string) string {
	hash := sha1.Sum([]byte(filterKey))
	return fmt.Sprintf("%s:%s:g%d:%s", viewKeyPrefix, channel, generation, hex.EncodeToString(hash[:]))
}

func (c *redisViewCache) Get(ctx context.Context, channel string, generation uint64, filterKey string) ([]byte, bool, error) {
	payload, err := c.client.Get(ctx, buildViewKey(channel, generation, filterKey)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}
	return payload, true, nil
}

func (c *redisViewCache) Set(ctx context.Context, channel string, generation uint64, filterKey string, payload []byte) error {
	if err := c.client.Set(ctx, buildViewKey(channel, generation, filterKey), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisViewCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, viewKeyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	return nil
}

func (n *noopViewCache) Get(ctx context.Context, channel string, generation uint64, filterKey string) ([]byte, bool, error) {
	return nil, false, nil
}

func (n *noopViewCache) Set(ctx context.Context, channel string, generation uint64, filterKey string, payload []byte) error {
	return nil
}

func (n *noopViewCache) InvalidateAll(ctx context.Context) error { return nil }

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}
	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}
