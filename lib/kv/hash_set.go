package kv

import (
	"github.com/benz9527/xcoll/lib/cursor"
	"github.com/benz9527/xcoll/lib/infra"
)

var _ Set[string] = (*HashSet[string])(nil)

// HashSet is an unordered set backed by a HashMap with unit values.
type HashSet[T comparable] struct {
	m *HashMap[T, struct{}]
}

func NewHashSet[T comparable](items ...T) *HashSet[T] {
	s := &HashSet[T]{
		m: NewHashMap[T, struct{}](WithHashMapCapacity(uint32(len(items)))),
	}
	for _, item := range items {
		s.Add(item)
	}
	return s
}

// Clone returns an independent copy of s.
func (s *HashSet[T]) Clone() *HashSet[T] {
	c := &HashSet[T]{
		m: NewHashMap[T, struct{}](WithHashMapCapacity(uint32(s.Len()))),
	}
	s.Foreach(func(_ int64, item T) bool {
		c.Add(item)
		return true
	})
	return c
}

func (s *HashSet[T]) Add(item T) bool {
	return s.m.Add(item, struct{}{})
}

// Remove deletes item and returns the element that was stored.
func (s *HashSet[T]) Remove(item T) (T, error) {
	e, err := s.m.Remove(item)
	if err != nil {
		var zero T
		return zero, infra.WrapErrorStackWithMessage(infra.ErrNotFound, "[hash-set] remove")
	}
	return e.Key(), nil
}

func (s *HashSet[T]) Contains(item T) bool {
	return s.m.Contains(item)
}

func (s *HashSet[T]) Len() int64 {
	return s.m.Len()
}

func (s *HashSet[T]) Clear() {
	s.m.Clear()
}

func (s *HashSet[T]) Hash() uint64 {
	return s.m.Hash()
}

func (s *HashSet[T]) Items() []T {
	return s.m.Keys()
}

func (s *HashSet[T]) Foreach(action func(idx int64, item T) bool) {
	s.m.Foreach(func(idx int64, key T, _ struct{}) bool {
		return action(idx, key)
	})
}

func (s *HashSet[T]) Cursor() cursor.Cursor[T] {
	return cursor.Map(s.m.Cursor(), Entry[T, struct{}].Key)
}

// Equal reports whether other holds the same elements.
func (s *HashSet[T]) Equal(other Set[T]) bool {
	if other == nil {
		return false
	}
	if o, ok := other.(*HashSet[T]); ok {
		if o == s {
			return true
		}
		if o.Hash() != s.Hash() {
			return false
		}
	}
	if s.Len() != other.Len() {
		return false
	}
	equal := true
	s.Foreach(func(_ int64, item T) bool {
		equal = other.Contains(item)
		return equal
	})
	return equal
}
