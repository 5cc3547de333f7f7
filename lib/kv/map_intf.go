package kv

// Entry is an immutable key-value pair.
// Two entries are equal when both keys and values are equal.
type Entry[K any, V any] struct {
	key K
	val V
}

func NewEntry[K any, V any](key K, val V) Entry[K, V] {
	return Entry[K, V]{key: key, val: val}
}

func (e Entry[K, V]) Key() K {
	return e.key
}

func (e Entry[K, V]) Val() V {
	return e.val
}

// Map is the read side shared by the hash and the ordered maps.
// Equality between different map kinds is defined on it.
type Map[K any, V any] interface {
	Len() int64
	Contains(key K) bool
	// Get returns infra.ErrNotFound if the key is absent.
	Get(key K) (V, error)
	// Foreach stops as soon as action returns false.
	Foreach(action func(idx int64, key K, val V) bool)
}

// Set is the read side shared by the hash and the ordered sets.
type Set[T any] interface {
	Len() int64
	Contains(item T) bool
	Foreach(action func(idx int64, item T) bool)
}
