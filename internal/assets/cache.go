package assets

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "vvardenfell"
	subsystem = "extract_cache"
)

// Cache keeps extracted file contents in memory. It never evicts: once
// the byte cap is reached further entries are rejected, so callers must
// tolerate a miss at any time. A nil *Cache caches nothing.
type Cache struct {
	mu       sync.Mutex
	data     map[string][]byte
	size     int64
	maxBytes int64
	maxEntry int64

	hits    prometheus.Counter
	misses  prometheus.Counter
	rejects prometheus.Counter
}

// NewCache creates a cache holding at most maxBytes bytes. Files larger
// than maxEntry bytes are never stored.
func NewCache(maxBytes, maxEntry int64) *Cache {
	return &Cache{
		data:     make(map[string][]byte),
		maxBytes: maxBytes,
		maxEntry: maxEntry,
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "hits_total",
			Help:      "Archive reads served from memory.",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "misses_total",
			Help:      "Archive reads that went to disk.",
		}),
		rejects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rejects_total",
			Help:      "Extracted files not cached because of the entry or total size limit.",
		}),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	data, ok := c.data[key]
	c.mu.Unlock()

	if ok {
		c.hits.Inc()
	} else {
		c.misses.Inc()
	}
	return data, ok
}

// Add stores data under key and reports whether it is cached afterwards.
func (c *Cache) Add(key string, data []byte) bool {
	if c == nil {
		return false
	}
	n := int64(len(data))
	if n > c.maxEntry {
		c.rejects.Inc()
		return false
	}

	c.mu.Lock()
	if _, ok := c.data[key]; ok {
		c.mu.Unlock()
		return true
	}
	if c.size+n > c.maxBytes {
		c.mu.Unlock()
		c.rejects.Inc()
		return false
	}
	c.data[key] = data
	c.size += n
	c.mu.Unlock()
	return true
}

// Size returns the number of cached bytes.
func (c *Cache) Size() int64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Clear drops every entry. Counters keep their values.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.size = 0
}

// Collectors returns the cache counters for registration.
func (c *Cache) Collectors() []prometheus.Collector {
	if c == nil {
		return nil
	}
	return []prometheus.Collector{c.hits, c.misses, c.rejects}
}
