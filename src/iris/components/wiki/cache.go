package wiki

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const cachePrefix = "iris:page:"

// CachedLookup wraps a Lookup with a Redis read-through cache on page
// details. Search stays uncached: rankings shift and the call is cheap.
type CachedLookup struct {
	inner Lookup
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedLookup(inner Lookup, rdb *redis.Client, ttl time.Duration) *CachedLookup {
	return &CachedLookup{inner: inner, rdb: rdb, ttl: ttl}
}

func (c *CachedLookup) Search(ctx context.Context, query string, limit int) ([]string, error) {
	return c.inner.Search(ctx, query, limit)
}

func (c *CachedLookup) PageDetails(ctx context.Context, title string) (*Page, error) {
	key := cachePrefix + title

	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var page Page
		if json.Unmarshal(raw, &page) == nil {
			return &page, nil
		}
	}

	page, err := c.inner.PageDetails(ctx, title)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(page); err == nil {
		if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			log.Printf("page cache: %v", err)
		}
	}

	return page, nil
}
