package kv

import (
	"encoding/binary"
	"hash/fnv"
	"iter"
	"maps"
)

// Context maps template keys to their replacement values.
// It is not safe for concurrent mutation.
type Context struct {
	elements map[string]string
}

// New returns an empty Context.
func New() *Context {
	return &Context{elements: make(map[string]string)}
}

// WithCapacity returns an empty Context sized for n
// entries.
func WithCapacity(n int) *Context {
	return &Context{elements: make(map[string]string, n)}
}

// FromMap copies m into a new Context.
func FromMap(m map[string]string) *Context {
	return &Context{elements: maps.Clone(m)}
}

// FromSeq builds a Context from a sequence of pairs. Later
// pairs override earlier ones with the same key.
func FromSeq(seq iter.Seq2[string, string]) *Context {
	c := New()
	c.Extend(seq)

	return c
}

// Set stores value under key, replacing any previous value.
func (c *Context) Set(key, value string) {
	c.init()
	c.elements[key] = value
}

// Get returns the value stored under key.
func (c *Context) Get(key string) (string, bool) {
	v, ok := c.elements[key]

	return v, ok
}

// Remove deletes key and returns the value it held.
func (c *Context) Remove(key string) (string, bool) {
	v, ok := c.elements[key]
	if ok {
		delete(c.elements, key)
	}

	return v, ok
}

// Len returns the number of pairs.
func (c *Context) Len() int {
	return len(c.elements)
}

// IsEmpty reports whether the Context holds no pairs.
func (c *Context) IsEmpty() bool {
	return len(c.elements) == 0
}

// Clear removes every pair.
func (c *Context) Clear() {
	clear(c.elements)
}

// All iterates over the pairs in no particular order.
func (c *Context) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for k, v := range c.elements {
			if !yield(k, v) {
				return
			}
		}
	}
}

// Extend sets every pair yielded by seq.
func (c *Context) Extend(seq iter.Seq2[string, string]) {
	for k, v := range seq {
		c.Set(k, v)
	}
}

// Clone returns an independent copy.
func (c *Context) Clone() *Context {
	return FromMap(c.elements)
}

// Equal reports whether both contexts hold the same pairs.
func (c *Context) Equal(other *Context) bool {
	return maps.Equal(c.elements, other.elements)
}

// Hash returns a 64-bit digest of the pairs. Each pair is
// hashed on its own with FNV-1a over the key length, the key
// and the value, and the results are summed, so iteration
// order never affects the result.
func (c *Context) Hash() uint64 {
	var (
		sum    uint64
		keyLen [8]byte
	)

	ha := fnv.New64a()

	for k, v := range c.elements {
		binary.BigEndian.PutUint64(keyLen[:], uint64(len(k)))

		ha.Reset()
		_, _ = ha.Write(keyLen[:])
		_, _ = ha.Write([]byte(k))
		_, _ = ha.Write([]byte(v))
		sum += ha.Sum64()
	}

	return sum
}

func (c *Context) init() {
	if c.elements == nil {
		c.elements = make(map[string]string)
	}
}
