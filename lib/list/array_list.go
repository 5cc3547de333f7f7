package list

import (
	"github.com/benz9527/xcoll/lib/cursor"
	"github.com/benz9527/xcoll/lib/infra"
)

const defaultArrayListCapacity = 10

var _ List[struct{}] = (*ArrayList[struct{}])(nil) // Type check assertion

// ArrayList is a dynamic array. The backing storage starts with room for
// ten elements and doubles when full.
// Not safe for concurrent use.
type ArrayList[T comparable] struct {
	items []T // len(items) is the capacity
	size  int64
	stamp cursor.Stamp
}

func NewArrayList[T comparable](items ...T) *ArrayList[T] {
	capacity := defaultArrayListCapacity
	for capacity < len(items) {
		capacity <<= 1
	}
	l := &ArrayList[T]{
		items: make([]T, capacity),
	}
	copy(l.items, items)
	l.size = int64(len(items))
	return l
}

func (l *ArrayList[T]) Len() int64 {
	return l.size
}

// Cap is the number of elements the backing storage holds before growing.
func (l *ArrayList[T]) Cap() int64 {
	return int64(len(l.items))
}

func (l *ArrayList[T]) grow() {
	capacity := len(l.items) << 1
	if capacity == 0 {
		capacity = defaultArrayListCapacity
	}
	items := make([]T, capacity)
	copy(items, l.items[:l.size])
	l.items = items
}

func (l *ArrayList[T]) Add(item T) {
	if l.size == int64(len(l.items)) {
		l.grow()
	}
	l.items[l.size] = item
	l.size++
	l.stamp.Bump()
}

func (l *ArrayList[T]) AddAt(idx int64, item T) error {
	if idx < 0 || idx > l.size {
		return infra.WrapErrorStackWithMessage(infra.ErrIndexOutOfRange, "[array-list] add at")
	}
	if l.size == int64(len(l.items)) {
		l.grow()
	}
	copy(l.items[idx+1:l.size+1], l.items[idx:l.size])
	l.items[idx] = item
	l.size++
	l.stamp.Bump()
	return nil
}

func (l *ArrayList[T]) Get(idx int64) (T, error) {
	if idx < 0 || idx >= l.size {
		var zero T
		return zero, infra.WrapErrorStackWithMessage(infra.ErrIndexOutOfRange, "[array-list] get")
	}
	return l.items[idx], nil
}

func (l *ArrayList[T]) Set(idx int64, item T) (T, error) {
	if idx < 0 || idx >= l.size {
		var zero T
		return zero, infra.WrapErrorStackWithMessage(infra.ErrIndexOutOfRange, "[array-list] set")
	}
	prev := l.items[idx]
	l.items[idx] = item
	return prev, nil
}

func (l *ArrayList[T]) RemoveAt(idx int64) (T, error) {
	if idx < 0 || idx >= l.size {
		var zero T
		return zero, infra.WrapErrorStackWithMessage(infra.ErrIndexOutOfRange, "[array-list] remove at")
	}
	return l.removeAt(idx), nil
}

func (l *ArrayList[T]) removeAt(idx int64) T {
	var zero T
	item := l.items[idx]
	copy(l.items[idx:l.size-1], l.items[idx+1:l.size])
	l.size--
	// Drop the reference held by the vacated slot.
	l.items[l.size] = zero
	l.stamp.Bump()
	return item
}

func (l *ArrayList[T]) RemoveLast() (T, error) {
	if l.size == 0 {
		var zero T
		return zero, infra.WrapErrorStackWithMessage(infra.ErrIndexOutOfRange, "[array-list] remove last")
	}
	return l.removeAt(l.size - 1), nil
}

func (l *ArrayList[T]) Remove(item T) error {
	idx := l.IndexOf(item)
	if idx < 0 {
		return infra.WrapErrorStackWithMessage(infra.ErrNotFound, "[array-list] remove")
	}
	l.removeAt(idx)
	return nil
}

// IndexOf returns the position of the first element equal to item or -1.
func (l *ArrayList[T]) IndexOf(item T) int64 {
	for i := int64(0); i < l.size; i++ {
		if l.items[i] == item {
			return i
		}
	}
	return -1
}

func (l *ArrayList[T]) Contains(item T) bool {
	return l.IndexOf(item) >= 0
}

func (l *ArrayList[T]) Clear() {
	clear(l.items[:l.size])
	l.size = 0
	l.stamp.Bump()
}

func (l *ArrayList[T]) Foreach(action func(idx int64, item T) bool) {
	for i := int64(0); i < l.size; i++ {
		if !action(i, l.items[i]) {
			return
		}
	}
}

func (l *ArrayList[T]) Cursor() cursor.Cursor[T] {
	return cursor.New[T](&l.stamp, &arrayListWalker[T]{list: l})
}

func (l *ArrayList[T]) Items() []T {
	items := make([]T, l.size)
	copy(items, l.items[:l.size])
	return items
}

func (l *ArrayList[T]) Hash() uint64 {
	return positionalHash[T](l)
}

func (l *ArrayList[T]) Equal(other List[T]) bool {
	return positionalEqual[T](l, other)
}

type arrayListWalker[T comparable] struct {
	list *ArrayList[T]
	next int64
}

func (w *arrayListWalker[T]) Next() (T, bool) {
	if w.next >= w.list.size {
		var zero T
		return zero, false
	}
	item := w.list.items[w.next]
	w.next++
	return item, true
}

func (w *arrayListWalker[T]) Reset() {
	w.next = 0
}
