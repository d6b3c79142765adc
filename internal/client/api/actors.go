package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/rmdb/internal/client/model"
)

const (
	mimeActor       = "application/vnd.rmdb.actor.v1+json"
	mimeActorToAdd  = "application/vnd.rmdb.actortoadd.v1+json"
	mimeActorToEdit = "application/vnd.rmdb.actortoedit.v1+json"
)

type ActorAPI struct {
	c *Client
}

type actorBody struct {
	Name      string     `json:"name"`
	LastName  string     `json:"lastName"`
	BirthDate *time.Time `json:"birthDate"`
	Deceased  *time.Time `json:"deceased"`
}

func actorBodyOf(a model.Actor) actorBody {
	return actorBody{Name: a.Name, LastName: a.LastName, BirthDate: a.BirthDate, Deceased: a.Deceased}
}

func (a *ActorAPI) GetAll(ctx context.Context) ([]model.Actor, error) {
	var out []model.Actor
	if err := a.c.do(ctx, request{method: http.MethodGet, path: "api/actors", accept: mimeActor}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *ActorAPI) Get(ctx context.Context, id uuid.UUID) (model.Actor, error) {
	var out model.Actor
	if id == uuid.Nil {
		return out, ErrEmptyID
	}
	err := a.c.do(ctx, request{method: http.MethodGet, path: "api/actors/" + id.String(), accept: mimeActor}, &out)
	return out, err
}

func (a *ActorAPI) Add(ctx context.Context, actor model.Actor) (model.Actor, error) {
	var out model.Actor
	err := a.c.do(ctx, request{
		method:      http.MethodPost,
		path:        "api/actors",
		contentType: mimeActorToAdd,
		accept:      mimeActor,
		body:        actorBodyOf(actor),
	}, &out)
	return out, err
}

func (a *ActorAPI) Update(ctx context.Context, actor model.Actor) (model.Actor, error) {
	var out model.Actor
	if actor.ID == uuid.Nil {
		return out, ErrEmptyID
	}
	err := a.c.do(ctx, request{
		method:      http.MethodPut,
		path:        "api/actors/" + actor.ID.String(),
		contentType: mimeActorToEdit,
		accept:      mimeActor,
		body:        actorBodyOf(actor),
	}, &out)
	return out, err
}

func (a *ActorAPI) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrEmptyID
	}
	return a.c.do(ctx, request{method: http.MethodDelete, path: "api/actors/" + id.String()}, nil)
}
