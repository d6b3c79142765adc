package dto

import (
	"time"

	"github.com/google/uuid"
)

// ActorListDto is how an actor appears in lists and inside a movie.
type ActorListDto struct {
	ID        uuid.UUID  `json:"id"`
	FullName  string     `json:"fullName"`
	Name      string     `json:"name"`
	LastName  string     `json:"lastName"`
	BirthDate *time.Time `json:"birthDate"`
	Deceased  *time.Time `json:"deceased"`
}

// ActorDetailDto is the representation of GET /api/actors/{id}.
type ActorDetailDto struct {
	ID        uuid.UUID  `json:"id"`
	FullName  string     `json:"fullName"`
	Name      string     `json:"name"`
	LastName  string     `json:"lastName"`
	BirthDate *time.Time `json:"birthDate"`
	Deceased  *time.Time `json:"deceased"`
}

type AddActorDto struct {
	Name      string     `json:"name" validate:"required,min=1,max=50"`
	LastName  string     `json:"lastName" validate:"required,min=1,max=50"`
	BirthDate *time.Time `json:"birthDate"`
	Deceased  *time.Time `json:"deceased"`
}

type EditActorDto struct {
	Name      string     `json:"name" validate:"required,min=1,max=50"`
	LastName  string     `json:"lastName" validate:"required,min=1,max=50"`
	BirthDate *time.Time `json:"birthDate"`
	Deceased  *time.Time `json:"deceased"`
}

// AddActorToMovieDto is the body of POST /api/movies/{id}/actors.
type AddActorToMovieDto struct {
	ActorID uuid.UUID `json:"actorId" validate:"required"`
}
