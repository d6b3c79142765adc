package dto

import (
	"time"

	"github.com/google/uuid"
)

// MovieListDto is the row shape of GET /api/movies.
type MovieListDto struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	ReleaseDate *time.Time `json:"releaseDate"`
	Score       float64    `json:"score"`
}

// MovieDetailDto carries every scalar field of a movie.
type MovieDetailDto struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	ReleaseDate *time.Time `json:"releaseDate"`
	RunTime     *TimeSpan  `json:"runTime"`
	Score       float64    `json:"score"`
	Color       bool       `json:"color"`
}

// MovieDetailWithActorsDto is the default representation of a single movie.
type MovieDetailWithActorsDto struct {
	MovieDetailDto
	Actors []ActorListDto `json:"actors"`
}

// AddMovieDto is the body of POST /api/movies.
type AddMovieDto struct {
	Title       string     `json:"title" validate:"required,min=1,max=100"`
	Description *string    `json:"description" validate:"omitempty,min=1,max=500"`
	ReleaseDate *time.Time `json:"releaseDate"`
	RunTime     *TimeSpan  `json:"runTime" validate:"omitempty,gte=0"`
	Score       float64    `json:"score"`
	Color       bool       `json:"color"`
}

// EditMovieDto is the body of PUT /api/movies/{id} and the document a JSON
// Patch is applied to.
type EditMovieDto struct {
	Title       string     `json:"title" validate:"required,min=1,max=100"`
	Description *string    `json:"description" validate:"omitempty,min=1,max=500"`
	ReleaseDate *time.Time `json:"releaseDate"`
	RunTime     *TimeSpan  `json:"runTime" validate:"omitempty,gte=0"`
	Score       float64    `json:"score"`
	Color       bool       `json:"color"`
}
