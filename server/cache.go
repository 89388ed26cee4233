package server

import (
	syncx "github.com/ije/gox/sync"
	lru "github.com/hashicorp/golang-lru/v2"
)

// resultCache is a LRU cache of resolution results.
type resultCache struct {
	lru   *lru.Cache[string, any]
	mutex syncx.KeyedMutex
}

func newResultCache(size int) (*resultCache, error) {
	cache, err := lru.New[string, any](size)
	if err != nil {
		return nil, err
	}
	return &resultCache{lru: cache}, nil
}

func (c *resultCache) Len() int {
	return c.lru.Len()
}

func withCache[T any](c *resultCache, key string, fetch func() (T, error)) (data T, err error) {
	// check cache first
	if v, ok := c.lru.Get(key); ok {
		return v.(T), nil
	}

	unlock := c.mutex.Lock(key)
	defer unlock()

	// check cache again after lock
	if v, ok := c.lru.Get(key); ok {
		return v.(T), nil
	}

	data, err = fetch()
	if err != nil {
		return
	}
	c.lru.Add(key, data)
	return
}
