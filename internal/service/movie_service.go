package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/google/uuid"

	"github.com/iliyamo/rmdb/internal/dto"
	"github.com/iliyamo/rmdb/internal/queue"
	"github.com/iliyamo/rmdb/internal/repository"
)

// MovieService implements the movie use cases on top of the repositories.
type MovieService struct {
	movies *repository.MovieRepo
	actors *repository.ActorRepo
	notifier
}

func NewMovieService(movies *repository.MovieRepo, actors *repository.ActorRepo, events EventPublisher, log *slog.Logger) *MovieService {
	return &MovieService{movies: movies, actors: actors, notifier: newNotifier(events, log)}
}

func (s *MovieService) List(ctx context.Context) ([]dto.MovieListDto, error) {
	movies, err := s.movies.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovieListDto, 0, len(movies))
	for _, m := range movies {
		out = append(out, dto.MovieToList(m))
	}
	return out, nil
}

func (s *MovieService) Get(ctx context.Context, id uuid.UUID) (dto.MovieDetailDto, error) {
	m, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return dto.MovieDetailDto{}, mapMovieErr(err, id)
	}
	return dto.MovieToDetail(*m), nil
}

// GetWithActors returns the movie together with its cast.
func (s *MovieService) GetWithActors(ctx context.Context, id uuid.UUID) (dto.MovieDetailWithActorsDto, error) {
	m, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return dto.MovieDetailWithActorsDto{}, mapMovieErr(err, id)
	}
	cast, err := s.movies.ListActors(ctx, id)
	if err != nil {
		return dto.MovieDetailWithActorsDto{}, err
	}
	out := dto.MovieDetailWithActorsDto{
		MovieDetailDto: dto.MovieToDetail(*m),
		Actors:         make([]dto.ActorListDto, 0, len(cast)),
	}
	for _, p := range cast {
		out.Actors = append(out.Actors, dto.ActorToList(p))
	}
	return out, nil
}

// Add stores a new movie and returns its generated id.
func (s *MovieService) Add(ctx context.Context, in dto.AddMovieDto) (uuid.UUID, error) {
	m := in.Model(uuid.New())
	if err := s.movies.Create(ctx, &m); err != nil {
		return uuid.Nil, err
	}
	s.publish(queue.NewMovieEvent(queue.MovieCreated, m.ID, m.Title))
	return m.ID, nil
}

// Update overwrites every mutable field of the movie.
func (s *MovieService) Update(ctx context.Context, id uuid.UUID, in dto.EditMovieDto) (dto.MovieDetailDto, error) {
	m := in.Model(id)
	if err := s.movies.Update(ctx, m); err != nil {
		return dto.MovieDetailDto{}, mapMovieErr(err, id)
	}
	s.publish(queue.NewMovieEvent(queue.MovieUpdated, id, m.Title))
	return dto.MovieToDetail(m), nil
}

// Patch applies an RFC 6902 document to the editable view of the movie.
// check validates the patched result before anything is written; its error
// is returned unchanged.
func (s *MovieService) Patch(ctx context.Context, id uuid.UUID, doc []byte, check func(*dto.EditMovieDto) error) (dto.MovieDetailDto, error) {
	m, err := s.movies.GetByID(ctx, id)
	if err != nil {
		return dto.MovieDetailDto{}, mapMovieErr(err, id)
	}
	edited, err := applyMoviePatch(dto.MovieToEdit(*m), doc)
	if err != nil {
		return dto.MovieDetailDto{}, err
	}
	if check != nil {
		if err := check(&edited); err != nil {
			return dto.MovieDetailDto{}, err
		}
	}
	return s.Update(ctx, id, edited)
}

func applyMoviePatch(target dto.EditMovieDto, doc []byte) (dto.EditMovieDto, error) {
	patch, err := jsonpatch.DecodePatch(doc)
	if err != nil {
		return target, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	current, err := json.Marshal(target)
	if err != nil {
		return target, err
	}
	patched, err := patch.Apply(current)
	if err != nil {
		return target, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	var out dto.EditMovieDto
	dec := json.NewDecoder(bytes.NewReader(patched))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return target, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return out, nil
}

func (s *MovieService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.movies.Delete(ctx, id); err != nil {
		return mapMovieErr(err, id)
	}
	s.publish(queue.NewMovieEvent(queue.MovieDeleted, id, ""))
	return nil
}

// AddActorToMovie links an existing actor to an existing movie and returns
// the actor as it now appears in the cast.
func (s *MovieService) AddActorToMovie(ctx context.Context, movieID uuid.UUID, in dto.AddActorToMovieDto) (dto.ActorListDto, error) {
	err := s.movies.AddActor(ctx, movieID, in.ActorID)
	switch {
	case errors.Is(err, repository.ErrMovieNotFound):
		return dto.ActorListDto{}, movieNotFound(movieID)
	case errors.Is(err, repository.ErrActorNotFound):
		return dto.ActorListDto{}, actorNotFound(in.ActorID)
	case errors.Is(err, repository.ErrConflict):
		return dto.ActorListDto{}, ErrAlreadyLinked
	case err != nil:
		return dto.ActorListDto{}, err
	}

	p, err := s.actors.GetByID(ctx, in.ActorID)
	if err != nil {
		return dto.ActorListDto{}, mapActorErr(err, in.ActorID)
	}
	ev := queue.NewMovieEvent(queue.MovieActorAdded, movieID, "")
	ev.ActorID = &p.ID
	s.publish(ev)
	return dto.ActorToList(*p), nil
}

func mapMovieErr(err error, id uuid.UUID) error {
	if errors.Is(err, repository.ErrMovieNotFound) {
		return movieNotFound(id)
	}
	return err
}
