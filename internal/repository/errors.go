// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios.
package repository

import "errors"

// ErrNotFound is returned when a looked-up row does not exist.  Handlers
// should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an update cannot be applied because the row
// changed underneath the caller, such as a status transition racing
// another writer.  Handlers should translate this into an HTTP 409
// response.
var ErrConflict = errors.New("conflict")
