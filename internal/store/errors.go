package store

import (
	"errors"
	"fmt"
)

// ErrInvalidQuantity rejects non-positive quantities before they reach the
// database. Route handlers validate first; this guards direct callers.
var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

// PersistenceError reports a failed database operation. Its message is safe
// to send to clients; the underlying driver error is reachable via Unwrap
// and is only ever logged server-side.
type PersistenceError struct {
	Resource string
	Op       string
	Err      error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("could not %s %s", e.Op, e.Resource)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
