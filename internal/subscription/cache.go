package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "subscription:user:"

// Source fetches the current subscription for a user, typically from the
// subscriptions contract.
type Source interface {
	GetSubscription(ctx context.Context, user common.Address) (Subscription, error)
}

// Cache is a read-through redis cache in front of a Source.
type Cache struct {
	rdb    *redis.Client
	source Source
	ttl    time.Duration
}

func NewCache(rdb *redis.Client, source Source, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, source: source, ttl: ttl}
}

func cacheKey(user common.Address) string {
	return cacheKeyPrefix + strings.ToLower(user.Hex())
}

// GetOrFetch returns the cached subscription for user, falling back to
// the source and caching the result for the configured TTL. A cache miss
// with a failing source surfaces the source error; cache write failures
// are ignored since the fetched value is already in hand.
func (c *Cache) GetOrFetch(ctx context.Context, user common.Address) (Subscription, error) {
	key := cacheKey(user)
	raw, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		var sub Subscription
		if jsonErr := json.Unmarshal([]byte(raw), &sub); jsonErr == nil {
			return sub, nil
		}
		// Corrupt entry: drop it and refetch.
		c.rdb.Del(ctx, key) //nolint:errcheck
	} else if !errors.Is(err, redis.Nil) {
		return Subscription{}, fmt.Errorf("cache get: %w", err)
	}

	sub, err := c.source.GetSubscription(ctx, user)
	if err != nil {
		return Subscription{}, err
	}
	if buf, marshalErr := json.Marshal(sub); marshalErr == nil {
		c.rdb.Set(ctx, key, buf, c.ttl) //nolint:errcheck
	}
	return sub, nil
}
