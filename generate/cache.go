package generate

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// CandidateCache is a TTL cache of aggregated candidates keyed by context
// window. Entries hold candidates before the buffer-dependent final filter,
// so one entry serves every buffer sharing the same window.
type CandidateCache struct {
	cache *ttlcache.Cache[string, []string]
}

// NewCandidateCache creates a cache holding at most capacity entries.
func NewCandidateCache(ttl time.Duration, capacity int) *CandidateCache {
	opts := []ttlcache.Option[string, []string]{
		ttlcache.WithTTL[string, []string](ttl),
		ttlcache.WithDisableTouchOnHit[string, []string](),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, []string](uint64(capacity)))
	}
	c := ttlcache.New[string, []string](opts...)
	go c.Start()
	return &CandidateCache{cache: c}
}

// Get returns the cached candidates for window, or nil if absent or expired.
func (cc *CandidateCache) Get(window string) []string {
	item := cc.cache.Get(window)
	if item == nil {
		return nil
	}
	return item.Value()
}

// Set stores candidates for window. Empty lists are not cached so a failed
// or unlucky sample is retried next time.
func (cc *CandidateCache) Set(window string, candidates []string) {
	if len(candidates) == 0 {
		return
	}
	cc.cache.Set(window, candidates, ttlcache.DefaultTTL)
}

// Len returns the number of live entries.
func (cc *CandidateCache) Len() int {
	return cc.cache.Len()
}

// Close stops the cache expiration loop.
func (cc *CandidateCache) Close() {
	cc.cache.Stop()
}
