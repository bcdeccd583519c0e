// Package cache provides in-memory caches for bigtext
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// Stats reports cache effectiveness
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int
}

// HitRate returns hits as a percentage of all lookups
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// LRU is a thread-safe, fixed-capacity cache that evicts the least
// recently used key. A capacity of zero or less disables caching.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	index    map[K]*list.Element
	recency  *list.List // front is most recently used

	hits   atomic.Int64
	misses atomic.Int64
}

type item[K comparable, V any] struct {
	key K
	val V
}

// NewLRU creates an LRU holding at most capacity entries
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	return &LRU[K, V]{
		capacity: capacity,
		index:    make(map[K]*list.Element),
		recency:  list.New(),
	}
}

// Get returns the value for key and marks it recently used
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	c.recency.MoveToFront(el)
	return el.Value.(*item[K, V]).val, true
}

// Peek returns the value for key without touching recency or stats
func (c *LRU[K, V]) Peek(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		return el.Value.(*item[K, V]).val, true
	}
	var zero V
	return zero, false
}

// Add stores value under key and reports whether an entry was evicted
func (c *LRU[K, V]) Add(key K, value V) (evicted bool) {
	if c.capacity <= 0 {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		el.Value.(*item[K, V]).val = value
		c.recency.MoveToFront(el)
		return false
	}

	if c.recency.Len() >= c.capacity {
		if last := c.recency.Back(); last != nil {
			c.recency.Remove(last)
			delete(c.index, last.Value.(*item[K, V]).key)
			evicted = true
		}
	}
	c.index[key] = c.recency.PushFront(&item[K, V]{key: key, val: value})
	return evicted
}

// Remove deletes key and reports whether it was present
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if ok {
		c.recency.Remove(el)
		delete(c.index, key)
	}
	return ok
}

// Len returns the number of cached entries
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recency.Len()
}

// Purge drops every entry; statistics are kept
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.index = make(map[K]*list.Element)
	c.recency.Init()
}

// Stats returns a snapshot of the hit and miss counters
func (c *LRU[K, V]) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.Len(),
	}
}
