package cursor

// Cursor is a fail-fast iteration handle over a container.
//
// A new cursor is positioned before the first element. Advance moves it
// forward and reports whether an element is available, Current reads that
// element. Any structural mutation of the source container after the cursor
// was created makes the next Advance fail with infra.ErrInvalidatedCursor.
// The check detects interleaved mutation, it does not lock anything.
type Cursor[T any] interface {
	// Current returns the element the cursor is positioned on or
	// infra.ErrInvalidCursorAccess before the first Advance and after
	// the cursor is exhausted.
	Current() (T, error)
	// Advance moves to the next element. It returns false, and leaves the
	// cursor exhausted, once no elements remain.
	Advance() (bool, error)
	// Reset moves the cursor back before the first element.
	// The version captured at creation is kept.
	Reset()
}

// Walker is the container specific part of a cursor.
type Walker[T any] interface {
	Next() (T, bool)
	Reset()
}
