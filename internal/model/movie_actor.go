package model

import "github.com/google/uuid"

// MovieActor links a person to a movie.  The pair is the identity of the row
// and it lives exactly as long as the owning movie.
type MovieActor struct {
	MovieID uuid.UUID // movie_actors.movie_id
	ActorID uuid.UUID // movie_actors.actor_id
}
