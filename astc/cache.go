package astc

import "sync"

// tableCache memoizes immutable per-footprint tables. Built values are shared
// read-only between workers.
type tableCache[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

func (c *tableCache[K, V]) get(key K, build func() V) V {
	c.mu.RLock()
	v, ok := c.m[key]
	c.mu.RUnlock()
	if ok {
		return v
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.m[key]; ok {
		return v
	}
	if c.m == nil {
		c.m = make(map[K]V)
	}
	v = build()
	c.m[key] = v
	return v
}
