// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrNotFound maps to a 404 response, while ErrConflict
// signals that an operation cannot proceed because of the current
// state of the data (an overlapping slot template, or a status
// transition that is no longer legal).
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert or update cannot be
// performed because of conflicting state, such as adding a slot
// template that overlaps an existing one for the same service, or
// confirming an appointment that has already expired. Handlers
// should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
