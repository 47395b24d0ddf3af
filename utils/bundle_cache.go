package utils

import (
	lru "github.com/hashicorp/golang-lru"
)

// BundleCache remembers recently seen keys (bundle ids, or bundle id + status pairs),
// evicting the least recently used once full.
type BundleCache struct {
	cache *lru.Cache
}

const DefaultBundleCacheCapacity = 100000

func NewBundleCache(capacity int) *BundleCache {
	if capacity <= 0 {
		capacity = DefaultBundleCacheCapacity
	}
	c, err := lru.New(capacity)
	if err != nil {
		// lru.New only fails on a non-positive size
		panic(err)
	}
	return &BundleCache{cache: c}
}

func (c *BundleCache) Has(key string) bool {
	return c.cache.Contains(key)
}

// Add stores key and reports whether it was new.
func (c *BundleCache) Add(key string) bool {
	ok, _ := c.cache.ContainsOrAdd(key, struct{}{})
	return !ok
}

func (c *BundleCache) Remove(key string) {
	c.cache.Remove(key)
}

func (c *BundleCache) Len() int {
	return c.cache.Len()
}
