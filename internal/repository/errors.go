// Package repository holds the SQL access layer of the catalog.  The
// sentinel errors below let the service and handler layers tell the
// failure scenarios apart without inspecting driver errors.
package repository

import "errors"

// ErrMovieNotFound is returned when no movie has the requested id.
var ErrMovieNotFound = errors.New("movie not found")

// ErrActorNotFound is returned when no actor has the requested id.
var ErrActorNotFound = errors.New("actor not found")

// ErrConflict is returned when a write would duplicate an existing
// relation, such as linking the same actor to a movie twice.  Handlers
// translate it into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
