package list

import (
	"github.com/benz9527/xcoll/lib/cursor"
)

// List is a positional sequence of elements.
// Indices are zero based. An index outside of the valid range is
// reported as infra.ErrIndexOutOfRange.
type List[T comparable] interface {
	Len() int64
	// Add appends item at the end.
	Add(item T)
	// AddAt inserts item before the element at idx. idx == Len() appends.
	AddAt(idx int64, item T) error
	Get(idx int64) (T, error)
	// Set overwrites the element at idx in place and returns the old one.
	Set(idx int64, item T) (T, error)
	RemoveAt(idx int64) (T, error)
	RemoveLast() (T, error)
	// Remove deletes the first element equal to item.
	Remove(item T) error
	Contains(item T) bool
	Clear()
	// Foreach visits the elements in position order until action returns false.
	Foreach(action func(idx int64, item T) bool)
	Cursor() cursor.Cursor[T]
	Items() []T
	// Hash is order sensitive, h = 31*h + hash(item) starting from 1.
	Hash() uint64
	// Equal compares element-wise in position order.
	Equal(other List[T]) bool
}
