// Package service turns repository rows into DTOs and owns the catalog's
// write rules.  Handlers only ever see the errors declared here.
package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound matches every *NotFoundError via errors.Is.
var ErrNotFound = errors.New("not found")

// ErrAlreadyLinked is returned when an actor is already part of a movie's cast.
var ErrAlreadyLinked = errors.New("actor already linked to movie")

// ErrInvalidPatch wraps JSON Patch documents that cannot be decoded or applied.
var ErrInvalidPatch = errors.New("invalid patch document")

// NotFoundError names the entity that was missing.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func movieNotFound(id uuid.UUID) error { return &NotFoundError{Entity: "movie", ID: id} }
func actorNotFound(id uuid.UUID) error { return &NotFoundError{Entity: "actor", ID: id} }
