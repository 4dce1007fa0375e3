// Package cache keeps rendered listing pages close to the storefront.
//
// Pages live in a per-process expirable LRU and, when Redis is configured, in a
// shared Redis tier so every instance serves the same result. Invalidation is
// per shop: a moderation change drops every cached page of that shop on all
// instances and bumps the shop's generation, so a read that started before the change
// cannot write its now stale page back.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix           = "gallery:listing:"
	invalidationChannel = "gallery:listing:invalidate"
	tierLocal           = "local"
	tierRedis           = "redis"
)

var cacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gallery_listing_cache_requests_total",
	Help: "Listing cache lookups by tier and result.",
}, []string{"tier", "result"})

var cacheStaleWritesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "gallery_listing_cache_stale_writes_total",
	Help: "Listing pages not cached because the shop was invalidated during the read.",
})

// Tiered is a two-level cache of values keyed by shop and page key.
type Tiered[V any] struct {
	local  *expirable.LRU[string, V]
	redis  redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger

	mu   sync.Mutex
	gens map[string]uint64
}

// NewTiered builds the cache. A nil client keeps it process-local; a non-positive
// ttl disables caching entirely.
func NewTiered[V any](size int, ttl time.Duration, client redis.UniversalClient, logger *zap.Logger) *Tiered[V] {
	if size <= 0 {
		size = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tiered[V]{
		local:  expirable.NewLRU[string, V](size, nil, ttl),
		redis:  client,
		ttl:    ttl,
		logger: logger,
		gens:   make(map[string]uint64),
	}
}

// Enabled reports whether values are retained at all.
func (c *Tiered[V]) Enabled() bool {
	return c != nil && c.ttl > 0
}

// Get returns the cached value for shop/key.
func (c *Tiered[V]) Get(ctx context.Context, shop, key string) (V, bool) {
	var zero V
	if !c.Enabled() {
		return zero, false
	}

	full := entryKey(shop, key)
	if val, ok := c.local.Get(full); ok {
		cacheRequestsTotal.WithLabelValues(tierLocal, "hit").Inc()
		return val, true
	}
	cacheRequestsTotal.WithLabelValues(tierLocal, "miss").Inc()

	if c.redis == nil {
		return zero, false
	}

	raw, err := c.redis.Get(ctx, full).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("listing cache read failed", zap.String("shop", shop), zap.Error(err))
		}
		cacheRequestsTotal.WithLabelValues(tierRedis, "miss").Inc()
		return zero, false
	}

	var val V
	if err := json.Unmarshal(raw, &val); err != nil {
		c.logger.Warn("listing cache entry unreadable", zap.String("shop", shop), zap.Error(err))
		cacheRequestsTotal.WithLabelValues(tierRedis, "miss").Inc()
		return zero, false
	}
	cacheRequestsTotal.WithLabelValues(tierRedis, "hit").Inc()
	c.local.Add(full, val)
	return val, true
}

// Generation returns the invalidation counter of shop. Take it before reading the
// store and hand it to SetIfCurrent.
func (c *Tiered[V]) Generation(shop string) uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[shop]
}

// Set stores the value in both tiers.
func (c *Tiered[V]) Set(ctx context.Context, shop, key string, val V) {
	c.SetIfCurrent(ctx, shop, key, c.Generation(shop), val)
}

// SetIfCurrent stores the value only if shop has not been invalidated since gen was
// taken. It reports whether the value was kept.
func (c *Tiered[V]) SetIfCurrent(ctx context.Context, shop, key string, gen uint64, val V) bool {
	if !c.Enabled() {
		return false
	}

	full := entryKey(shop, key)
	c.mu.Lock()
	if c.gens[shop] != gen {
		c.mu.Unlock()
		cacheStaleWritesTotal.Inc()
		return false
	}
	c.local.Add(full, val)
	c.mu.Unlock()
	if c.redis == nil {
		return true
	}

	raw, err := json.Marshal(val)
	if err != nil {
		c.logger.Warn("listing cache entry not encodable", zap.String("shop", shop), zap.Error(err))
		return true
	}
	index := indexKey(shop)
	_, err = c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, full, raw, c.ttl)
		pipe.SAdd(ctx, index, full)
		pipe.Expire(ctx, index, c.ttl)
		return nil
	})
	if err != nil {
		c.logger.Warn("listing cache write failed", zap.String("shop", shop), zap.Error(err))
		return true
	}
	// An invalidation that landed during the write must not leave the page in Redis.
	if c.Generation(shop) != gen {
		if err := c.redis.Del(ctx, full).Err(); err != nil {
			c.logger.Warn("listing cache stale entry cleanup failed", zap.String("shop", shop), zap.Error(err))
		}
		cacheStaleWritesTotal.Inc()
		return false
	}
	return true
}

// InvalidateShop drops every cached page of shop here and, through Redis, everywhere.
func (c *Tiered[V]) InvalidateShop(ctx context.Context, shop string) {
	if c == nil {
		return
	}
	c.purgeLocal(shop)
	if c.redis == nil {
		return
	}

	index := indexKey(shop)
	keys, err := c.redis.SMembers(ctx, index).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Warn("listing cache index read failed", zap.String("shop", shop), zap.Error(err))
	}
	if err := c.redis.Del(ctx, append(keys, index)...).Err(); err != nil {
		c.logger.Warn("listing cache invalidation failed", zap.String("shop", shop), zap.Error(err))
	}
	if err := c.redis.Publish(ctx, invalidationChannel, shop).Err(); err != nil {
		c.logger.Warn("listing cache invalidation broadcast failed", zap.String("shop", shop), zap.Error(err))
	}
}

// Listen purges local entries when another instance invalidates a shop.
// It blocks until ctx is done.
func (c *Tiered[V]) Listen(ctx context.Context) {
	if c == nil || c.redis == nil {
		return
	}
	sub := c.redis.Subscribe(ctx, invalidationChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			c.purgeLocal(msg.Payload)
		}
	}
}

// Len is the number of entries held locally.
func (c *Tiered[V]) Len() int {
	return c.local.Len()
}

func (c *Tiered[V]) purgeLocal(shop string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[shop]++

	prefix := entryKey(shop, "")
	for _, key := range c.local.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.local.Remove(key)
		}
	}
}

func entryKey(shop, key string) string {
	return keyPrefix + shop + ":" + key
}

func indexKey(shop string) string {
	return keyPrefix + "index:" + shop
}
