package cursor

import (
	"github.com/benz9527/xcoll/lib/infra"
)

// Stamp is the version counter of a container.
// Bump it on every insert and remove, never on lookups.
type Stamp struct {
	version uint64
}

func (s *Stamp) Bump() {
	s.version++
}

func (s *Stamp) Load() uint64 {
	return s.version
}

var _ Cursor[struct{}] = (*stampCursor[struct{}])(nil)

type stampCursor[T any] struct {
	src      *Stamp
	captured uint64
	walker   Walker[T]
	item     T
	valid    bool
}

// New binds walker to the stamp of its container.
func New[T any](stamp *Stamp, walker Walker[T]) Cursor[T] {
	c := &stampCursor[T]{
		src:      stamp,
		captured: stamp.Load(),
		walker:   walker,
	}
	c.Reset()
	return c
}

func (c *stampCursor[T]) Current() (T, error) {
	if !c.valid {
		var zero T
		return zero, infra.WrapErrorStack(infra.ErrInvalidCursorAccess)
	}
	return c.item, nil
}

func (c *stampCursor[T]) Advance() (bool, error) {
	if c.src.Load() != c.captured {
		c.valid = false
		return false, infra.WrapErrorStack(infra.ErrInvalidatedCursor)
	}
	item, ok := c.walker.Next()
	if !ok {
		var zero T
		c.item, c.valid = zero, false
		return false, nil
	}
	c.item, c.valid = item, true
	return true, nil
}

func (c *stampCursor[T]) Reset() {
	var zero T
	c.item, c.valid = zero, false
	c.walker.Reset()
}

type mappedCursor[S, T any] struct {
	src Cursor[S]
	fn  func(S) T
}

// Map projects every element of src through fn.
// Version checks stay with src.
func Map[S, T any](src Cursor[S], fn func(S) T) Cursor[T] {
	return &mappedCursor[S, T]{src: src, fn: fn}
}

func (c *mappedCursor[S, T]) Current() (T, error) {
	item, err := c.src.Current()
	if err != nil {
		var zero T
		return zero, err
	}
	return c.fn(item), nil
}

func (c *mappedCursor[S, T]) Advance() (bool, error) {
	return c.src.Advance()
}

func (c *mappedCursor[S, T]) Reset() {
	c.src.Reset()
}

// Collect drains c from its current position.
func Collect[T any](c Cursor[T]) ([]T, error) {
	items := make([]T, 0, 8)
	for {
		ok, err := c.Advance()
		if err != nil {
			return items, err
		}
		if !ok {
			return items, nil
		}
		item, err := c.Current()
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
}
