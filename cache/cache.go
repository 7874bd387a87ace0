package cache

import (
	"iter"
	"time"
)

// DefaultTTL is the time-to-live used by Collect.
const DefaultTTL = 60 * time.Second

type item[V any] struct {
	value     V
	expiresAt time.Time
}

// Expiring is a generic time-to-live cache with an optional
// entry-count ceiling.
type Expiring[K comparable, V any] struct {
	items       map[K]item[V]
	ttl         time.Duration
	capacity    int
	hasCapacity bool
	now         func() time.Time
}

// New returns a cache without a capacity limit. It panics
// if ttl is not positive.
func New[K comparable, V any](ttl time.Duration) *Expiring[K, V] {
	mustPositive(ttl)

	return &Expiring[K, V]{
		items: make(map[K]item[V]),
		ttl:   ttl,
		now:   time.Now,
	}
}

// NewWithCapacity returns a cache that admits at most
// capacity keys. It panics if ttl is not positive.
func NewWithCapacity[K comparable, V any](
	ttl time.Duration,
	capacity int,
) *Expiring[K, V] {
	mustPositive(ttl)

	return &Expiring[K, V]{
		items:       make(map[K]item[V], max(capacity, 0)),
		ttl:         ttl,
		capacity:    capacity,
		hasCapacity: true,
		now:         time.Now,
	}
}

// Collect inserts every pair of seq into a new cache using
// DefaultTTL.
func Collect[K comparable, V any](
	seq iter.Seq2[K, V],
) *Expiring[K, V] {
	c := New[K, V](DefaultTTL)

	for k, v := range seq {
		c.Insert(k, v)
	}

	return c
}

func mustPositive(ttl time.Duration) {
	if ttl <= 0 {
		panic("cache: ttl must be positive")
	}
}

// Insert stores value under key with a fresh expiry and
// returns the previous value, if any. When the cache is at
// capacity and key is not already stored, nothing happens
// and Insert reports no previous value.
func (c *Expiring[K, V]) Insert(key K, value V) (V, bool) {
	prev, exists := c.items[key]

	if !exists &&
		c.hasCapacity &&
		len(c.items) >= c.capacity {
		var zero V

		return zero, false
	}

	c.items[key] = item[V]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}

	return prev.value, exists
}

// Get returns the value stored under key if it is still
// live.
func (c *Expiring[K, V]) Get(key K) (V, bool) {
	it, ok := c.items[key]
	if !ok || !it.expiresAt.After(c.now()) {
		var zero V

		return zero, false
	}

	return it.value, true
}

// ContainsKey reports whether key holds a live entry.
func (c *Expiring[K, V]) ContainsKey(key K) bool {
	_, ok := c.Get(key)

	return ok
}

// TTL returns the time left before the entry under key
// expires. It reports false for absent or dead entries.
func (c *Expiring[K, V]) TTL(key K) (time.Duration, bool) {
	it, ok := c.items[key]
	if !ok {
		return 0, false
	}

	left := it.expiresAt.Sub(c.now())
	if left <= 0 {
		return 0, false
	}

	return left, true
}

// Refresh restarts the expiry of the entry under key,
// reviving it if it had already expired. It reports false
// when key is not stored.
func (c *Expiring[K, V]) Refresh(key K) bool {
	it, ok := c.items[key]
	if !ok {
		return false
	}

	it.expiresAt = c.now().Add(c.ttl)
	c.items[key] = it

	return true
}

// Update replaces the value under key and restarts its
// expiry. It never inserts; it reports false when key is
// not stored.
func (c *Expiring[K, V]) Update(key K, value V) bool {
	if _, ok := c.items[key]; !ok {
		return false
	}

	c.items[key] = item[V]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}

	return true
}

// Remove deletes key whether or not it is live and returns
// the value it held.
func (c *Expiring[K, V]) Remove(key K) (V, bool) {
	it, ok := c.items[key]
	if ok {
		delete(c.items, key)
	}

	return it.value, ok
}

// RemoveExpired drops every dead entry from storage.
func (c *Expiring[K, V]) RemoveExpired() {
	now := c.now()

	for k, it := range c.items {
		if !it.expiresAt.After(now) {
			delete(c.items, k)
		}
	}
}

// SetCapacity sets the entry ceiling for future inserts.
// Entries already stored are kept even above the new
// ceiling.
func (c *Expiring[K, V]) SetCapacity(capacity int) {
	c.capacity = capacity
	c.hasCapacity = true
}

// Capacity returns the configured ceiling, if any.
func (c *Expiring[K, V]) Capacity() (int, bool) {
	return c.capacity, c.hasCapacity
}

// SetClock replaces the time source, which defaults to
// time.Now. Meant for simulated time in tests.
func (c *Expiring[K, V]) SetClock(now func() time.Time) {
	c.now = now
}

// TTLSetting returns the time-to-live applied on writes.
func (c *Expiring[K, V]) TTLSetting() time.Duration {
	return c.ttl
}

// Clear drops every entry.
func (c *Expiring[K, V]) Clear() {
	clear(c.items)
}

// Len returns the number of stored entries, dead ones
// included.
func (c *Expiring[K, V]) Len() int {
	return len(c.items)
}

// IsEmpty reports whether storage holds no entries, dead
// ones included.
func (c *Expiring[K, V]) IsEmpty() bool {
	return len(c.items) == 0
}

// All iterates over live entries in no particular order.
// Liveness is evaluated once per iteration start; dead
// entries are skipped, not removed.
func (c *Expiring[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		now := c.now()

		for k, it := range c.items {
			if !it.expiresAt.After(now) {
				continue
			}

			if !yield(k, it.value) {
				return
			}
		}
	}
}
