package cache

import "sync"

// Cache is a thread-safe LRU cache with a hard capacity.
//
// Entries form a ring around a sentinel: sentinel.next is the most recently
// used entry, sentinel.prev the least recently used one.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*entry[K, V]
	sentinel entry[K, V]
	capacity int
	onEvict  func(K, V)

	hits, misses uint64
}

type entry[K comparable, V any] struct {
	key        K
	value      V
	prev, next *entry[K, V]
}

// New creates a cache holding at most capacity entries. A capacity below
// one is treated as one. onEvict may be nil.
func New[K comparable, V any](capacity int, onEvict func(K, V)) *Cache[K, V] {
	c := &Cache[K, V]{
		entries:  make(map[K]*entry[K, V]),
		capacity: max(capacity, 1),
		onEvict:  onEvict,
	}
	c.sentinel.prev = &c.sentinel
	c.sentinel.next = &c.sentinel
	return c
}

// Get retrieves a value and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.touch(e)
	return e.value, true
}

// Set stores a value. A value already stored under key is evicted.
func (c *Cache[K, V]) Set(key K, value V) {
	var evicted []entry[K, V]

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		evicted = append(evicted, entry[K, V]{key: key, value: e.value})
		e.value = value
		c.touch(e)
	} else {
		e := &entry[K, V]{key: key, value: value}
		c.entries[key] = e
		c.link(e)
		evicted = c.trim(evicted)
	}
	c.mu.Unlock()

	c.evict(evicted)
}

// GetOrCreate returns the cached value for key, or calls create and stores
// its result. Errors from create are returned and nothing is stored.
func (c *Cache[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := create()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}

// Delete removes and evicts an entry. It reports whether key was present.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok {
		c.remove(e)
	}
	c.mu.Unlock()

	if ok {
		c.evict([]entry[K, V]{*e})
	}
	return ok
}

// Clear evicts every entry, least recently used first.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	evicted := make([]entry[K, V], 0, len(c.entries))
	for c.sentinel.prev != &c.sentinel {
		e := c.sentinel.prev
		c.remove(e)
		evicted = append(evicted, *e)
	}
	c.mu.Unlock()

	c.evict(evicted)
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the maximum number of entries.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Len: len(c.entries), Capacity: c.capacity, Hits: c.hits, Misses: c.misses}
}

// link puts e at the most recently used end. Caller must hold c.mu.
func (c *Cache[K, V]) link(e *entry[K, V]) {
	e.prev = &c.sentinel
	e.next = c.sentinel.next
	e.next.prev = e
	c.sentinel.next = e
}

func (c *Cache[K, V]) unlink(e *entry[K, V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev, e.next = nil, nil
}

func (c *Cache[K, V]) touch(e *entry[K, V]) {
	if c.sentinel.next == e {
		return
	}
	c.unlink(e)
	c.link(e)
}

func (c *Cache[K, V]) remove(e *entry[K, V]) {
	c.unlink(e)
	delete(c.entries, e.key)
}

// trim drops least recently used entries until the cache fits.
// Caller must hold c.mu.
func (c *Cache[K, V]) trim(evicted []entry[K, V]) []entry[K, V] {
	for len(c.entries) > c.capacity {
		e := c.sentinel.prev
		c.remove(e)
		evicted = append(evicted, *e)
	}
	return evicted
}

// evict runs the callback outside the lock so it may use the cache.
func (c *Cache[K, V]) evict(evicted []entry[K, V]) {
	if c.onEvict == nil {
		return
	}
	for _, e := range evicted {
		c.onEvict(e.key, e.value)
	}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the maximum number of entries.
	Capacity int
	// Hits is the number of successful lookups.
	Hits uint64
	// Misses is the number of failed lookups.
	Misses uint64
}
