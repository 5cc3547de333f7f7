package list

import (
	"github.com/benz9527/xcoll/lib/cursor"
	"github.com/benz9527/xcoll/lib/infra"
)

var _ List[struct{}] = (*LinkedList[struct{}])(nil) // Type check assertion

// LinkedList is a doubly linked list rooted at a sentinel element.
// root.next is the front and root.prev is the back, both are root itself
// when the list is empty.
// Not safe for concurrent use.
type LinkedList[T comparable] struct {
	root  *NodeElement[T]
	len   int64
	stamp cursor.Stamp
}

func NewLinkedList[T comparable](items ...T) *LinkedList[T] {
	l := new(LinkedList[T]).init()
	for _, item := range items {
		l.insertAfter(newNodeElement(item, l), l.root.prev)
	}
	return l
}

func (l *LinkedList[T]) init() *LinkedList[T] {
	l.root = &NodeElement[T]{
		listRef: l,
	}
	l.root.next = l.root
	l.root.prev = l.root
	l.len = 0
	return l
}

func (l *LinkedList[T]) Len() int64 {
	return l.len
}

func (l *LinkedList[T]) owns(e *NodeElement[T]) bool {
	return e != nil && e != l.root && e.listRef == l
}

// insertAfter links e right after at.
func (l *LinkedList[T]) insertAfter(e, at *NodeElement[T]) *NodeElement[T] {
	e.listRef = l
	e.prev = at
	e.next = at.next
	at.next.prev = e
	at.next = e
	l.len++
	l.stamp.Bump()
	return e
}

func (l *LinkedList[T]) unlink(e *NodeElement[T]) T {
	e.prev.next = e.next
	e.next.prev = e.prev
	// avoid memory leaks
	e.next = nil
	e.prev = nil
	e.listRef = nil
	l.len--
	l.stamp.Bump()
	return e.Value
}

// element walks from the nearer end. idx must be in range.
func (l *LinkedList[T]) element(idx int64) *NodeElement[T] {
	if idx < l.len>>1 {
		e := l.root.next
		for i := int64(0); i < idx; i++ {
			e = e.next
		}
		return e
	}
	e := l.root.prev
	for i := l.len - 1; i > idx; i-- {
		e = e.prev
	}
	return e
}

// Front returns the first element or nil if the list is empty.
func (l *LinkedList[T]) Front() *NodeElement[T] {
	if l.len == 0 {
		return nil
	}
	return l.root.next
}

// Back returns the last element or nil if the list is empty.
func (l *LinkedList[T]) Back() *NodeElement[T] {
	if l.len == 0 {
		return nil
	}
	return l.root.prev
}

func (l *LinkedList[T]) AddFirst(item T) *NodeElement[T] {
	return l.insertAfter(newNodeElement(item, l), l.root)
}

func (l *LinkedList[T]) AddLast(item T) *NodeElement[T] {
	return l.insertAfter(newNodeElement(item, l), l.root.prev)
}

func (l *LinkedList[T]) Add(item T) {
	l.AddLast(item)
}

func (l *LinkedList[T]) AddAt(idx int64, item T) error {
	if idx < 0 || idx > l.len {
		return infra.WrapErrorStackWithMessage(infra.ErrIndexOutOfRange, "[linked-list] add at")
	}
	if idx == l.len {
		l.AddLast(item)
		return nil
	}
	l.insertAfter(newNodeElement(item, l), l.element(idx).prev)
	return nil
}

// InsertBefore inserts item right before mark and returns the new element.
// It returns nil if mark does not belong to l.
func (l *LinkedList[T]) InsertBefore(item T, mark *NodeElement[T]) *NodeElement[T] {
	if !l.owns(mark) {
		return nil
	}
	return l.insertAfter(newNodeElement(item, l), mark.prev)
}

// InsertAfter inserts item right after mark and returns the new element.
// It returns nil if mark does not belong to l.
func (l *LinkedList[T]) InsertAfter(item T, mark *NodeElement[T]) *NodeElement[T] {
	if !l.owns(mark) {
		return nil
	}
	return l.insertAfter(newNodeElement(item, l), mark)
}

func (l *LinkedList[T]) Get(idx int64) (T, error) {
	if idx < 0 || idx >= l.len {
		var zero T
		return zero, infra.WrapErrorStackWithMessage(infra.ErrIndexOutOfRange, "[linked-list] get")
	}
	return l.element(idx).Value, nil
}

func (l *LinkedList[T]) Set(idx int64, item T) (T, error) {
	if idx < 0 || idx >= l.len {
		var zero T
		return zero, infra.WrapErrorStackWithMessage(infra.ErrIndexOutOfRange, "[linked-list] set")
	}
	e := l.element(idx)
	prev := e.Value
	e.Value = item
	return prev, nil
}

func (l *LinkedList[T]) RemoveAt(idx int64) (T, error) {
	if idx < 0 || idx >= l.len {
		var zero T
		return zero, infra.WrapErrorStackWithMessage(infra.ErrIndexOutOfRange, "[linked-list] remove at")
	}
	return l.unlink(l.element(idx)), nil
}

func (l *LinkedList[T]) RemoveFirst() (T, error) {
	if l.len == 0 {
		var zero T
		return zero, infra.WrapErrorStackWithMessage(infra.ErrIndexOutOfRange, "[linked-list] remove first")
	}
	return l.unlink(l.root.next), nil
}

func (l *LinkedList[T]) RemoveLast() (T, error) {
	if l.len == 0 {
		var zero T
		return zero, infra.WrapErrorStackWithMessage(infra.ErrIndexOutOfRange, "[linked-list] remove last")
	}
	return l.unlink(l.root.prev), nil
}

// RemoveElement unlinks e if it belongs to l.
func (l *LinkedList[T]) RemoveElement(e *NodeElement[T]) bool {
	if !l.owns(e) {
		return false
	}
	l.unlink(e)
	return true
}

func (l *LinkedList[T]) Remove(item T) error {
	e, ok := l.FindFirst(item)
	if !ok {
		return infra.WrapErrorStackWithMessage(infra.ErrNotFound, "[linked-list] remove")
	}
	l.unlink(e)
	return nil
}

// FindFirst returns the first element whose value equals item.
// If matchFn is provided it replaces the equality check.
func (l *LinkedList[T]) FindFirst(item T, matchFn ...func(e *NodeElement[T]) bool) (*NodeElement[T], bool) {
	match := func(e *NodeElement[T]) bool {
		return e.Value == item
	}
	if len(matchFn) > 0 && matchFn[0] != nil {
		match = matchFn[0]
	}
	for e := l.root.next; e != l.root; e = e.next {
		if match(e) {
			return e, true
		}
	}
	return nil, false
}

func (l *LinkedList[T]) Contains(item T) bool {
	_, ok := l.FindFirst(item)
	return ok
}

// MoveToFront moves e to the front of l. It reports false if e does not
// belong to l or is the front already.
func (l *LinkedList[T]) MoveToFront(e *NodeElement[T]) bool {
	if !l.owns(e) || l.root.next == e {
		return false
	}
	l.move(e, l.root)
	return true
}

// MoveToBack moves e to the back of l. It reports false if e does not
// belong to l or is the back already.
func (l *LinkedList[T]) MoveToBack(e *NodeElement[T]) bool {
	if !l.owns(e) || l.root.prev == e {
		return false
	}
	l.move(e, l.root.prev)
	return true
}

// move relinks src right after dst.
func (l *LinkedList[T]) move(src, dst *NodeElement[T]) {
	src.prev.next = src.next
	src.next.prev = src.prev

	src.prev = dst
	src.next = dst.next
	dst.next.prev = src
	dst.next = src
	l.stamp.Bump()
}

func (l *LinkedList[T]) Clear() {
	for e := l.root.next; e != l.root; {
		next := e.next
		e.next, e.prev, e.listRef = nil, nil, nil
		e = next
	}
	l.init()
	l.stamp.Bump()
}

func (l *LinkedList[T]) Foreach(action func(idx int64, item T) bool) {
	idx := int64(0)
	for e := l.root.next; e != l.root; e = e.next {
		if !action(idx, e.Value) {
			return
		}
		idx++
	}
}

// ReverseForeach visits the elements from the back. idx counts from the back too.
func (l *LinkedList[T]) ReverseForeach(action func(idx int64, item T) bool) {
	idx := int64(0)
	for e := l.root.prev; e != l.root; e = e.prev {
		if !action(idx, e.Value) {
			return
		}
		idx++
	}
}

func (l *LinkedList[T]) Cursor() cursor.Cursor[T] {
	return cursor.New[T](&l.stamp, &linkedListWalker[T]{list: l})
}

func (l *LinkedList[T]) Items() []T {
	items := make([]T, 0, l.len)
	l.Foreach(func(_ int64, item T) bool {
		items = append(items, item)
		return true
	})
	return items
}

func (l *LinkedList[T]) Hash() uint64 {
	return positionalHash[T](l)
}

func (l *LinkedList[T]) Equal(other List[T]) bool {
	return positionalEqual[T](l, other)
}

type linkedListWalker[T comparable] struct {
	list *LinkedList[T]
	at   *NodeElement[T]
}

func (w *linkedListWalker[T]) Next() (T, bool) {
	if w.at == nil {
		w.at = w.list.root
	}
	if w.at.next == w.list.root {
		var zero T
		return zero, false
	}
	w.at = w.at.next
	return w.at.Value, true
}

func (w *linkedListWalker[T]) Reset() {
	w.at = nil
}
