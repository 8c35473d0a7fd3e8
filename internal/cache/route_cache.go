// Package cache holds the optional redis-backed cache of route decisions.
// Routing reads dominate this service, while mappings change rarely and only
// through the switch path, which invalidates the affected key.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/rukapay/routing-engine/internal/model"
)

const keyPrefix = "route:"

type RedisRouteCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRouteCache(client *redis.Client, ttl time.Duration) *RedisRouteCache {
	return &RedisRouteCache{client: client, ttl: ttl}
}

// Get returns a cached decision, or a miss on any redis or decode failure.
// The cache is advisory: resolution always works without it.
func (c *RedisRouteCache) Get(ctx context.Context, key string) (*model.RouteDecision, bool) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("route cache get failed")
		}
		return nil, false
	}

	var decision model.RouteDecision
	if err := json.Unmarshal(raw, &decision); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("route cache entry corrupt")
		return nil, false
	}
	return &decision, true
}

func (c *RedisRouteCache) Set(ctx context.Context, key string, decision *model.RouteDecision) {
	raw, err := json.Marshal(decision)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("route cache set failed")
	}
}

func (c *RedisRouteCache) Invalidate(ctx context.Context, key string) {
	if err := c.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("route cache invalidate failed")
	}
}

// Noop satisfies the cache contract when no redis is configured.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) Get(context.Context, string) (*model.RouteDecision, bool) { return nil, false }
func (Noop) Set(context.Context, string, *model.RouteDecision)        {}
func (Noop) Invalidate(context.Context, string)                       {}
