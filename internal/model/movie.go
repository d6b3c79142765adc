package model

import (
	"time"

	"github.com/google/uuid"
)

// Movie is a catalog entry.  Optional columns are pointers so that a NULL in
// the store stays distinguishable from a zero value.
//
// Fields:
//
//	ID          - movies.id, generated on insert and never changed.
//	Title       - movies.title, 1..100 characters.
//	Description - movies.description, up to 500 characters.
//	ReleaseDate - movies.release_date.
//	RunTime     - movies.run_time_seconds.
//	Score       - movies.score.
//	Color       - movies.color (false for black and white).
type Movie struct {
	ID          uuid.UUID
	Title       string
	Description *string
	ReleaseDate *time.Time
	RunTime     *time.Duration
	Score       float64
	Color       bool
}
