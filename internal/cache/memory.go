package cache

import (
	"encoding/json"
	"path"
	"sync"
	"time"
)

// MemoryCache is the in-process fallback used when redis is not
// reachable, and the L1 of the multi-level cache when it is.
type MemoryCache struct {
	store sync.Map
}

type cacheItem struct {
	data       []byte
	expiration time.Time
}

func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{}
	go c.cleanup()
	return c
}

func (c *MemoryCache) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store.Store(key, &cacheItem{
		data:       data,
		expiration: time.Now().Add(ttl),
	})
	return nil
}

func (c *MemoryCache) Get(key string, dest interface{}) error {
	item, exists := c.store.Load(key)
	if !exists {
		return ErrCacheMiss
	}

	cached := item.(*cacheItem)
	if time.Now().After(cached.expiration) {
		c.store.Delete(key)
		return ErrCacheMiss
	}

	return json.Unmarshal(cached.data, dest)
}

func (c *MemoryCache) Delete(key string) error {
	c.store.Delete(key)
	return nil
}

func (c *MemoryCache) DeletePattern(pattern string) error {
	c.store.Range(func(key, _ interface{}) bool {
		if matched, _ := path.Match(pattern, key.(string)); matched {
			c.store.Delete(key)
		}
		return true
	})
	return nil
}

func (c *MemoryCache) Exists(key string) (bool, error) {
	var discard json.RawMessage
	err := c.Get(key, &discard)
	if err == ErrCacheMiss {
		return false, nil
	}
	return err == nil, err
}

func (c *MemoryCache) Health() error {
	return nil
}

func (c *MemoryCache) Close() error {
	return nil
}

func (c *MemoryCache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.store.Range(func(key, value interface{}) bool {
			if now.After(value.(*cacheItem).expiration) {
				c.store.Delete(key)
			}
			return true
		})
	}
}
