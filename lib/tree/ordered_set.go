package tree

import (
	"io"

	"github.com/benz9527/xcoll/lib/cursor"
	"github.com/benz9527/xcoll/lib/infra"
	"github.com/benz9527/xcoll/lib/kv"
)

var _ kv.Set[int] = (*OrderedSet[int])(nil)

// OrderedSet is an OrderedMap with unit values.
type OrderedSet[T any] struct {
	m *OrderedMap[T, struct{}]
}

func NewOrderedSet[T infra.OrderedKey](opts ...OrderedMapOption) *OrderedSet[T] {
	return &OrderedSet[T]{m: NewOrderedMap[T, struct{}](opts...)}
}

func NewOrderedSetSelf[T infra.Comparable[T]](opts ...OrderedMapOption) *OrderedSet[T] {
	return &OrderedSet[T]{m: NewOrderedMapSelf[T, struct{}](opts...)}
}

func NewOrderedSetFunc[T any](cmp infra.OrderedKeyComparator[T], opts ...OrderedMapOption) *OrderedSet[T] {
	return &OrderedSet[T]{m: NewOrderedMapFunc[T, struct{}](cmp, opts...)}
}

func (s *OrderedSet[T]) Add(item T) bool {
	return s.m.Add(item, struct{}{})
}

// Remove deletes item and returns the element that was stored.
func (s *OrderedSet[T]) Remove(item T) (T, error) {
	e, err := s.m.Remove(item)
	if err != nil {
		var zero T
		return zero, infra.WrapErrorStackWithMessage(infra.ErrNotFound, "[ordered-set] remove")
	}
	return e.Key(), nil
}

func (s *OrderedSet[T]) Contains(item T) bool {
	return s.m.Contains(item)
}

func (s *OrderedSet[T]) Len() int64 {
	return s.m.Len()
}

func (s *OrderedSet[T]) Clear() {
	s.m.Clear()
}

func (s *OrderedSet[T]) Foreach(action func(idx int64, item T) bool) {
	s.m.Foreach(func(idx int64, key T, _ struct{}) bool {
		return action(idx, key)
	})
}

func (s *OrderedSet[T]) Cursor() cursor.Cursor[T] {
	return cursor.Map(s.m.Cursor(), kv.Entry[T, struct{}].Key)
}

func (s *OrderedSet[T]) Items() []T {
	return s.m.Keys()
}

func (s *OrderedSet[T]) Min() (T, error) {
	e, err := s.m.Min()
	return e.Key(), err
}

func (s *OrderedSet[T]) Max() (T, error) {
	e, err := s.m.Max()
	return e.Key(), err
}

func (s *OrderedSet[T]) Depth() int {
	return s.m.Depth()
}

func (s *OrderedSet[T]) Dump(w io.Writer) error {
	return s.m.Dump(w)
}

func (s *OrderedSet[T]) CheckInvariants() error {
	return s.m.CheckInvariants()
}

// Equal reports whether other holds the same elements. Two ordered sets are
// compared by merging their in order sequences first.
func (s *OrderedSet[T]) Equal(other kv.Set[T]) bool {
	if other == nil || s.Len() != other.Len() {
		return false
	}
	if o, ok := other.(*OrderedSet[T]); ok {
		if o == s || s.m.mergeEqual(o.m, func(_, _ struct{}) bool { return true }) {
			return true
		}
	}
	equal := true
	s.Foreach(func(_ int64, item T) bool {
		equal = other.Contains(item)
		return equal
	})
	return equal
}
