// Package redis shares route lookup results between processes through Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/rally-detour/internal/domain"
	"github.com/couchcryptid/rally-detour/internal/observability"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "rally-detour:routes:"

// kv is the subset of the go-redis client the cache needs.
type kv interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
}

// RouteCache wraps a RouteLookup with a Redis-backed cache. Redis failures
// fall through to the inner lookup.
type RouteCache struct {
	inner   domain.RouteLookup
	client  kv
	ttl     time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

// Connect opens a Redis client and verifies it with PING.
func Connect(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

// NewRouteCache creates the decorator. Entries expire after ttl; zero keeps them.
func NewRouteCache(inner domain.RouteLookup, client *goredis.Client, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) *RouteCache {
	return newRouteCache(inner, client, ttl, metrics, logger)
}

func newRouteCache(inner domain.RouteLookup, client kv, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) *RouteCache {
	return &RouteCache{
		inner:   inner,
		client:  client,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger.With("component", "redis_route_cache"),
	}
}

func (c *RouteCache) RoutesByStop(ctx context.Context, stopID string) ([]string, error) {
	key := keyPrefix + stopID

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var routes []string
		if jerr := json.Unmarshal(data, &routes); jerr == nil {
			c.metrics.RouteCache.WithLabelValues("redis", "hit").Inc()
			return routes, nil
		}
		c.logger.Warn("discarding malformed cache entry", "key", key)
	case errors.Is(err, goredis.Nil):
	default:
		c.logger.Warn("cache get failed", "key", key, "error", err)
	}
	c.metrics.RouteCache.WithLabelValues("redis", "miss").Inc()

	routes, err := c.inner.RoutesByStop(ctx, stopID)
	if err != nil || len(routes) == 0 {
		return routes, err
	}

	payload, err := json.Marshal(routes)
	if err != nil {
		return routes, nil
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
	return routes, nil
}
