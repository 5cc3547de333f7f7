package kv

import (
	"github.com/benz9527/xcoll/lib/cursor"
	"github.com/benz9527/xcoll/lib/infra"
)

type hashMapConfig struct {
	capacity uint32
}

type HashMapOption func(cfg *hashMapConfig)

// WithHashMapCapacity presizes the table for n elements.
func WithHashMapCapacity(n uint32) HashMapOption {
	return func(cfg *hashMapConfig) {
		cfg.capacity = n
	}
}

var _ Map[string, int] = (*HashMap[string, int])(nil)

// HashMap is an unordered map with unique keys.
// It keeps the sum of its entry hashes, so Hash is O(1).
// Not safe for concurrent use.
type HashMap[K comparable, V comparable] struct {
	table *swissMap[K, V]
	hash  uint64
	stamp cursor.Stamp
}

func NewHashMap[K comparable, V comparable](opts ...HashMapOption) *HashMap[K, V] {
	cfg := &hashMapConfig{}
	for _, o := range opts {
		o(cfg)
	}
	return &HashMap[K, V]{
		table: newSwissMap[K, V](cfg.capacity),
	}
}

// NewHashMapFrom copies a native map.
func NewHashMapFrom[K comparable, V comparable](src map[K]V) *HashMap[K, V] {
	m := NewHashMap[K, V](WithHashMapCapacity(uint32(len(src))))
	for k, v := range src {
		m.Add(k, v)
	}
	return m
}

// Add inserts the pair if key is absent. An existing value is kept.
func (m *HashMap[K, V]) Add(key K, val V) bool {
	if _, inserted := m.table.PutIfAbsent(key, val); !inserted {
		return false
	}
	m.hash += entryHash(key, val)
	m.stamp.Bump()
	return true
}

// Set inserts the pair or overwrites the value of an existing key.
// An overwrite does not invalidate cursors.
func (m *HashMap[K, V]) Set(key K, val V) {
	prev, replaced := m.table.Put(key, val)
	if replaced {
		m.hash -= entryHash(key, prev)
		m.hash += entryHash(key, val)
		return
	}
	m.hash += entryHash(key, val)
	m.stamp.Bump()
}

func (m *HashMap[K, V]) Get(key K) (V, error) {
	val, ok := m.table.Get(key)
	if !ok {
		return val, infra.WrapErrorStackWithMessage(infra.ErrNotFound, "[hash-map] get")
	}
	return val, nil
}

func (m *HashMap[K, V]) Contains(key K) bool {
	_, _, ok := m.table.find(key)
	return ok
}

// Remove deletes key and returns the entry that was stored for it.
func (m *HashMap[K, V]) Remove(key K) (Entry[K, V], error) {
	k, v, ok := m.table.Delete(key)
	if !ok {
		return Entry[K, V]{}, infra.WrapErrorStackWithMessage(infra.ErrNotFound, "[hash-map] remove")
	}
	m.hash -= entryHash(k, v)
	m.stamp.Bump()
	return NewEntry(k, v), nil
}

func (m *HashMap[K, V]) Len() int64 {
	return m.table.Len()
}

func (m *HashMap[K, V]) Clear() {
	m.table.Clear()
	m.hash = 0
	m.stamp.Bump()
}

// Hash is equal for maps holding equal entries.
func (m *HashMap[K, V]) Hash() uint64 {
	return m.hash
}

func (m *HashMap[K, V]) Foreach(action func(idx int64, key K, val V) bool) {
	m.table.Foreach(func(i uint64, key K, val V) bool {
		return action(int64(i), key, val)
	})
}

func (m *HashMap[K, V]) Keys() []K {
	keys := make([]K, 0, m.Len())
	m.table.Foreach(func(_ uint64, key K, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func (m *HashMap[K, V]) Values() []V {
	vals := make([]V, 0, m.Len())
	m.table.Foreach(func(_ uint64, _ K, val V) bool {
		vals = append(vals, val)
		return true
	})
	return vals
}

func (m *HashMap[K, V]) Entries() []Entry[K, V] {
	entries := make([]Entry[K, V], 0, m.Len())
	m.table.Foreach(func(_ uint64, key K, val V) bool {
		entries = append(entries, NewEntry(key, val))
		return true
	})
	return entries
}

func (m *HashMap[K, V]) Cursor() cursor.Cursor[Entry[K, V]] {
	return cursor.New[Entry[K, V]](&m.stamp, m.table.walker())
}

// Equal reports whether other holds the same entries, in any order.
func (m *HashMap[K, V]) Equal(other Map[K, V]) bool {
	if other == nil {
		return false
	}
	if o, ok := other.(*HashMap[K, V]); ok {
		if o == m {
			return true
		}
		if o.hash != m.hash {
			return false
		}
	}
	if m.Len() != other.Len() {
		return false
	}
	equal := true
	m.table.Foreach(func(_ uint64, key K, val V) bool {
		v, err := other.Get(key)
		equal = err == nil && v == val
		return equal
	})
	return equal
}
