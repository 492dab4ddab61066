package legalref

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/medhold/dispute-cli/internal/model"
)

// Cached wraps a Lookup with an expiring in-memory cache so a batch run
// resolving the same finding types over and over hits the provider once.
type Cached struct {
	next  Lookup
	cache *gocache.Cache
}

// NewCached caches successful lookups for ttl, sweeping expired entries
// every cleanupInterval.
func NewCached(next Lookup, ttl, cleanupInterval time.Duration) *Cached {
	return &Cached{
		next:  next,
		cache: gocache.New(ttl, cleanupInterval),
	}
}

// Lookup serves from the cache when the same type list was resolved within
// the TTL. Errors are never cached; the next call retries the provider.
func (c *Cached) Lookup(ctx context.Context, findingTypes []string) ([]model.LegalReference, error) {
	key := cacheKey(findingTypes)
	if val, found := c.cache.Get(key); found {
		return val.([]model.LegalReference), nil
	}

	refs, err := c.next.Lookup(ctx, findingTypes)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, refs, gocache.DefaultExpiration)
	return refs, nil
}

// cacheKey is order-sensitive. Callers pass finding types in report order,
// which is deterministic for a given document.
func cacheKey(findingTypes []string) string {
	return strings.Join(findingTypes, "\x1f")
}
