package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"grimoire/internal/middleware"
	"grimoire/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	RequestKeyPrefix = "request:%s"
	GrimoriosKey     = "grimorios:catalog"
)

const (
	RequestTTL   = 5 * time.Minute
	GrimoriosTTL = 30 * time.Minute
)

// RequestKey is the cache key of a single request read.
func RequestKey(id string) string {
	return fmt.Sprintf(RequestKeyPrefix, id)
}

// Aside loads key into dest, calling fetch to fill dest on a miss and
// storing the result for ttl. Redis failures fall back to fetch; errors
// returned by fetch are passed through untouched and nothing is stored.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	if client == nil {
		return fetch()
	}

	raw, err := client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			observability.CacheLookups.WithLabelValues("hit").Inc()
			return nil
		}
		observability.CacheLookups.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		observability.CacheLookups.WithLabelValues("miss").Inc()
	default:
		observability.CacheLookups.WithLabelValues("error").Inc()
		middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err.Error())
	}

	if err := fetch(); err != nil {
		return err
	}

	payload, err := json.Marshal(dest)
	if err != nil {
		return nil
	}
	if err := client.Set(ctx, key, payload, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", err.Error())
	}
	return nil
}

// Invalidate removes key from the cache. It is a no-op without Redis.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateRequest drops the cached read of request id.
func InvalidateRequest(ctx context.Context, id string) {
	Invalidate(ctx, RequestKey(id))
}
