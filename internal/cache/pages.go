package cache

import (
	"context"
	"fmt"
	"time"

	"quill/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const indexKeyPrefix = "index:page:"

// IndexKey returns the cache key for one page of the home listing.
func IndexKey(page int) string {
	return fmt.Sprintf("%s%d", indexKeyPrefix, page)
}

// PageCache caches fully rendered page payloads under fixed keys with a
// bounded TTL. Writes elsewhere in the system do not invalidate it: readers
// get the stale snapshot until expiry or an explicit Clear. When Redis is
// unavailable every lookup is a miss and writes are dropped.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache returns a PageCache over the given client. A nil client
// yields a pass-through cache.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	return &PageCache{client: client, ttl: ttl}
}

// Get returns the cached payload for key, if present.
func (p *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if p == nil || p.client == nil {
		return nil, false
	}
	payload, err := p.client.Get(ctx, key).Bytes()
	if err != nil {
		middleware.PageCacheMisses.WithLabelValues(key).Inc()
		return nil, false
	}
	middleware.PageCacheHits.WithLabelValues(key).Inc()
	return payload, true
}

// Set stores the payload under key for the cache's TTL. Best-effort.
func (p *PageCache) Set(ctx context.Context, key string, payload []byte) {
	if p == nil || p.client == nil {
		return
	}
	p.client.Set(ctx, key, payload, p.ttl)
}

// Clear removes every cached index page.
func (p *PageCache) Clear(ctx context.Context) error {
	if p == nil || p.client == nil {
		return nil
	}
	iter := p.client.Scan(ctx, 0, indexKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := p.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// TTL reports the cache's time-to-live.
func (p *PageCache) TTL() time.Duration {
	if p == nil {
		return 0
	}
	return p.ttl
}
