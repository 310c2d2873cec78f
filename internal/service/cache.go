// Package service contains the business logic of the quote service.
package service

import (
	"container/list"
	"hash/fnv"
	"sync"
	"time"

	"github.com/baryc/quote-service/internal/metrics"
	"github.com/baryc/quote-service/internal/service/cache"
)

// ShardedCache is the in-memory quote cache. Keys are spread over LRU
// shards so that concurrent quotes rarely wait on the same lock.
type ShardedCache struct {
	shards    []*ttlCache
	shardMask uint32
}

// NewShardedCache creates a cache holding about capacity entries for ttl
// each. numShards is rounded up to a power of two; 0 or less means 16.
func NewShardedCache(capacity int, ttl time.Duration, numShards int) *ShardedCache {
	n := 16
	if numShards > 0 {
		n = 1
		for n < numShards {
			n <<= 1
		}
	}

	perShard := max(capacity/n, 1)
	sc := &ShardedCache{shards: make([]*ttlCache, n), shardMask: uint32(n - 1)}
	for i := range sc.shards {
		sc.shards[i] = newTTLCache(perShard, ttl)
	}
	return sc
}

func (sc *ShardedCache) shard(key string) *ttlCache {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return sc.shards[h.Sum32()&sc.shardMask]
}

// Get returns the cached quote for key.
func (sc *ShardedCache) Get(key string) ([]byte, bool) { return sc.shard(key).Get(key) }

// Set caches a quote under key.
func (sc *ShardedCache) Set(key string, value []byte) { sc.shard(key).Set(key, value) }

// Invalidate drops key.
func (sc *ShardedCache) Invalidate(key string) { sc.shard(key).Invalidate(key) }

// Clear drops every entry. It runs whenever a new pricing snapshot is
// published.
func (sc *ShardedCache) Clear() {
	for _, s := range sc.shards {
		s.Clear()
	}
}

// Stop ends the expiry sweeps.
func (sc *ShardedCache) Stop() {
	for _, s := range sc.shards {
		s.Stop()
	}
}

// Metrics sums the counters of every shard.
func (sc *ShardedCache) Metrics() cache.Metrics {
	var total cache.Metrics
	for _, s := range sc.shards {
		m := s.Metrics()
		total.Hits += m.Hits
		total.Misses += m.Misses
		total.Evictions += m.Evictions
		total.Size += m.Size
		total.Capacity += m.Capacity
	}
	return total
}

type ttlEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// ttlCache is one LRU shard. Entries also expire ttl after their last Set.
type ttlCache struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time

	mu    sync.Mutex
	order *list.List // front is most recently used
	index map[string]*list.Element

	hits, misses, evictions int64

	stopOnce sync.Once
	stopCh   chan struct{}
}

func newTTLCache(capacity int, ttl time.Duration) *ttlCache {
	c := &ttlCache{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		order:    list.New(),
		index:    make(map[string]*list.Element, capacity),
		stopCh:   make(chan struct{}),
	}
	go c.sweepLoop()
	return c
}

func (c *ttlCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.index[key]
	if !ok {
		c.misses++
		metrics.RecordCacheOperation("get", "miss")
		return nil, false
	}

	entry := el.Value.(*ttlEntry)
	if !c.now().Before(entry.expiresAt) {
		c.remove(el)
		c.misses++
		metrics.RecordCacheOperation("get", "expired")
		return nil, false
	}

	c.order.MoveToFront(el)
	c.hits++
	metrics.RecordCacheOperation("get", "hit")
	return entry.value, true
}

func (c *ttlCache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)
	if el, ok := c.index[key]; ok {
		entry := el.Value.(*ttlEntry)
		entry.value, entry.expiresAt = value, expiresAt
		c.order.MoveToFront(el)
		metrics.RecordCacheOperation("set", "success")
		return
	}

	c.index[key] = c.order.PushFront(&ttlEntry{key: key, value: value, expiresAt: expiresAt})
	for c.order.Len() > c.capacity {
		c.remove(c.order.Back())
		c.evictions++
		metrics.RecordCacheOperation("evict", "capacity")
	}
	metrics.RecordCacheOperation("set", "success")
}

func (c *ttlCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		c.remove(el)
		metrics.RecordCacheOperation("invalidate", "success")
	}
}

// Clear drops every entry and resets the counters.
func (c *ttlCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.index = make(map[string]*list.Element, c.capacity)
	c.hits, c.misses, c.evictions = 0, 0, 0
	metrics.RecordCacheOperation("clear", "success")
}

func (c *ttlCache) Metrics() cache.Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	return cache.Metrics{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      c.order.Len(),
		Capacity:  c.capacity,
	}
}

// Stop ends the sweep goroutine. It is safe to call more than once.
func (c *ttlCache) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}

func (c *ttlCache) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopCh:
			return
		}
	}
}

// sweep drops expired entries, walking from the least recently used end.
func (c *ttlCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if !now.Before(el.Value.(*ttlEntry).expiresAt) {
			c.remove(el)
		}
		el = prev
	}
	metrics.UpdateCacheMetrics(c.order.Len(), c.capacity)
}

func (c *ttlCache) remove(el *list.Element) {
	delete(c.index, el.Value.(*ttlEntry).key)
	c.order.Remove(el)
}
