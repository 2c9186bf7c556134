package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// RistrettoCache adapts a ristretto cache. Every entry costs 1 so size bounds
// the entry count. Set waits for the write buffer so a following Get hits.
type RistrettoCache[T any] struct {
	cache *ristretto.Cache[string, T]
	ttl   time.Duration
}

func NewRistrettoCache[T any](size int, ttl time.Duration) (*RistrettoCache[T], error) {
	if size < 1 {
		size = 1
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, T]{
		NumCounters: int64(size) * 10,
		MaxCost:     int64(size),
		BufferItems: 64,

		// Cost counts entries, not bytes
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &RistrettoCache[T]{cache: c, ttl: ttl}, nil
}

func (c *RistrettoCache[T]) Get(key string) (T, bool) {
	return c.cache.Get(key)
}

func (c *RistrettoCache[T]) Set(key string, data T) {
	if c.ttl > 0 {
		c.cache.SetWithTTL(key, data, 1, c.ttl)
	} else {
		c.cache.Set(key, data, 1)
	}
	c.cache.Wait()
}

func (c *RistrettoCache[T]) Delete(key string) {
	c.cache.Del(key)
}

func (c *RistrettoCache[T]) Clear() {
	c.cache.Clear()
}

func (c *RistrettoCache[T]) Close() {
	c.cache.Close()
}
