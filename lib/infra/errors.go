package infra

import "errors"

// Container precondition violations. They are programmer errors, the
// containers never recover from them internally.
var (
	ErrNotFound            = errors.New("[xcoll] element not found")
	ErrIndexOutOfRange     = errors.New("[xcoll] index out of range")
	ErrInvalidCursorAccess = errors.New("[xcoll] cursor is not positioned on an element")
	ErrInvalidatedCursor   = errors.New("[xcoll] container modified after the cursor was created")
)
