package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/iliyamo/rmdb/internal/dto"
	"github.com/iliyamo/rmdb/internal/queue"
	"github.com/iliyamo/rmdb/internal/repository"
)

// ActorService implements the actor use cases.
type ActorService struct {
	actors *repository.ActorRepo
	notifier
}

func NewActorService(actors *repository.ActorRepo, events EventPublisher, log *slog.Logger) *ActorService {
	return &ActorService{actors: actors, notifier: newNotifier(events, log)}
}

func (s *ActorService) List(ctx context.Context) ([]dto.ActorListDto, error) {
	people, err := s.actors.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ActorListDto, 0, len(people))
	for _, p := range people {
		out = append(out, dto.ActorToList(p))
	}
	return out, nil
}

func (s *ActorService) Get(ctx context.Context, id uuid.UUID) (dto.ActorDetailDto, error) {
	p, err := s.actors.GetByID(ctx, id)
	if err != nil {
		return dto.ActorDetailDto{}, mapActorErr(err, id)
	}
	return dto.ActorToDetail(*p), nil
}

// Add stores every field of the new actor, dates included, and returns its id.
func (s *ActorService) Add(ctx context.Context, in dto.AddActorDto) (uuid.UUID, error) {
	p := in.Model(uuid.New())
	if err := s.actors.Create(ctx, &p); err != nil {
		return uuid.Nil, err
	}
	s.publish(queue.NewActorEvent(queue.ActorCreated, p.ID, p.FullName()))
	return p.ID, nil
}

func (s *ActorService) Update(ctx context.Context, id uuid.UUID, in dto.EditActorDto) (dto.ActorDetailDto, error) {
	p := in.Model(id)
	if err := s.actors.Update(ctx, p); err != nil {
		return dto.ActorDetailDto{}, mapActorErr(err, id)
	}
	s.publish(queue.NewActorEvent(queue.ActorUpdated, id, p.FullName()))
	return dto.ActorToDetail(p), nil
}

func (s *ActorService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.actors.Delete(ctx, id); err != nil {
		return mapActorErr(err, id)
	}
	s.publish(queue.NewActorEvent(queue.ActorDeleted, id, ""))
	return nil
}

func mapActorErr(err error, id uuid.UUID) error {
	if errors.Is(err, repository.ErrActorNotFound) {
		return actorNotFound(id)
	}
	return err
}
