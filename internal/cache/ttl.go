package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gaspulse/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Per-kind TTLs. These are product decisions, not derived values.
var TTLByKind = map[domain.Kind]time.Duration{
	domain.KindGasPrice:       30 * time.Second,
	domain.KindSpotPrice:      3 * time.Minute,
	domain.KindMarketGlobal:   5 * time.Minute,
	domain.KindSentimentIndex: time.Hour,
	domain.KindAltseasonIndex: time.Hour,
	domain.KindNewsFeed:       30 * time.Minute,
	domain.KindTrendingTokens: time.Hour,
	domain.KindDerivatives:    5 * time.Minute,
}

// TTL returns the configured TTL for a kind, defaulting to a minute for
// anything unmapped.
func TTL(kind domain.Kind) time.Duration {
	if d, ok := TTLByKind[kind]; ok {
		return d
	}
	return time.Minute
}

// RedisClient is the subset of go-redis the TTL cache needs.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// TTLCache memoizes fetch results per (kind, params) key in Redis. It is
// constructed once at startup and injected wherever caching is needed;
// there is no package-level singleton, so tests run isolated instances.
type TTLCache struct {
	redis RedisClient
	group singleflight.Group
}

func NewTTLCache(client RedisClient) *TTLCache {
	return &TTLCache{redis: client}
}

// GetOrFetch returns the cached value for (kind, params) if it is younger
// than the kind's TTL, otherwise invokes fetch and stores the result.
// Concurrent callers for the same expired key are coalesced into a single
// fetch. If fetch fails and a stale copy exists, the stale copy is served
// in preference to the error.
func GetOrFetch[T any](ctx context.Context, c *TTLCache, kind domain.Kind, params string, fetch func(ctx context.Context) (*T, error)) (*T, error) {
	if c == nil || c.redis == nil {
		return fetch(ctx)
	}

	key := fmt.Sprintf("%s:%s", kind, params)

	if cached, ok := getJSON[T](ctx, c.redis, key); ok {
		return cached, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check after winning the flight: a peer may have populated it.
		if cached, ok := getJSON[T](ctx, c.redis, key); ok {
			return cached, nil
		}

		fresh, err := fetch(ctx)
		if err != nil || fresh == nil {
			if stale, ok := getJSON[T](ctx, c.redis, key+":stale"); ok {
				log.Printf("cache %s: serving stale value after fetch failure: %v", key, err)
				return stale, nil
			}
			if err == nil {
				err = fmt.Errorf("cache %s: fetch returned no value", key)
			}
			return nil, err
		}

		data, merr := json.Marshal(fresh)
		if merr != nil {
			return fresh, nil
		}
		if serr := c.redis.Set(ctx, key, data, TTL(kind)).Err(); serr != nil {
			log.Printf("cache %s: write error: %v", key, serr)
		}
		// Durable copy for serve-stale; no expiry, replaced wholesale.
		_ = c.redis.Set(ctx, key+":stale", data, 0).Err()

		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

func getJSON[T any](ctx context.Context, client RedisClient, key string) (*T, bool) {
	data, err := client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("cache %s: read error: %v", key, err)
		return nil, false
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false
	}
	return &out, true
}
