// Package queue defines the catalog events exchanged over RabbitMQ together
// with their publisher and the log-writing consumer.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Event types published after successful catalog writes.
const (
	MovieCreated    = "movie.created"
	MovieUpdated    = "movie.updated"
	MovieDeleted    = "movie.deleted"
	MovieActorAdded = "movie.actor_added"
	ActorCreated    = "actor.created"
	ActorUpdated    = "actor.updated"
	ActorDeleted    = "actor.deleted"
)

// CatalogEvent is published whenever a movie or actor changes.  It carries
// enough information for downstream consumers to log or index the change
// without querying the primary database.
type CatalogEvent struct {
	Type       string     `json:"type"`
	MovieID    *uuid.UUID `json:"movie_id,omitempty"`
	ActorID    *uuid.UUID `json:"actor_id,omitempty"`
	Title      string     `json:"title,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// NewMovieEvent builds an event about a movie; title may be empty.
func NewMovieEvent(typ string, movieID uuid.UUID, title string) CatalogEvent {
	return CatalogEvent{Type: typ, MovieID: &movieID, Title: title, OccurredAt: time.Now().UTC()}
}

// NewActorEvent builds an event about an actor; name may be empty.
func NewActorEvent(typ string, actorID uuid.UUID, name string) CatalogEvent {
	return CatalogEvent{Type: typ, ActorID: &actorID, Title: name, OccurredAt: time.Now().UTC()}
}
