// Package repository defines error types reused across multiple
// repositories. These sentinel values let higher layers such as handlers
// distinguish failure scenarios: ErrNotFound maps to HTTP 404 while
// ErrInvalidState signals an illegal workflow transition (e.g. resolving an
// already-resolved item) and maps to HTTP 409.
package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidState is returned when a state transition is attempted from a
// state it is not legal in. The row is left untouched.
var ErrInvalidState = errors.New("invalid state for transition")

// ErrEmailExists is returned when registration hits the unique email index.
var ErrEmailExists = errors.New("email already exists")
