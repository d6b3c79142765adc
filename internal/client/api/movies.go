package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/rmdb/internal/client/model"
	"github.com/iliyamo/rmdb/internal/dto"
)

type MovieAPI struct {
	c *Client
}

func (m *MovieAPI) GetAll(ctx context.Context) ([]model.Movie, error) {
	var out []model.Movie
	if err := m.c.do(ctx, request{method: http.MethodGet, path: "api/movies"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the movie with its actors.
func (m *MovieAPI) Get(ctx context.Context, id uuid.UUID) (model.Movie, error) {
	var out model.Movie
	if id == uuid.Nil {
		return out, ErrEmptyID
	}
	err := m.c.do(ctx, request{
		method: http.MethodGet,
		path:   "api/movies/" + id.String(),
		accept: "application/vnd.rmdb.moviewithactors+json",
	}, &out)
	return out, err
}

type movieBody struct {
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	ReleaseDate *time.Time    `json:"releaseDate"`
	RunTime     *dto.TimeSpan `json:"runTime"`
	Score       float64       `json:"score"`
	Color       bool          `json:"color"`
}

func bodyOf(mv model.Movie) movieBody {
	return movieBody{
		Title:       mv.Title,
		Description: mv.Description,
		ReleaseDate: mv.ReleaseDate,
		RunTime:     mv.RunTime,
		Score:       mv.Score,
		Color:       mv.Color,
	}
}

func (m *MovieAPI) Create(ctx context.Context, mv model.Movie) (model.Movie, error) {
	var out model.Movie
	err := m.c.do(ctx, request{method: http.MethodPost, path: "api/movies", body: bodyOf(mv)}, &out)
	return out, err
}

type patchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// Update sends a JSON Patch document replacing every editable field.
func (m *MovieAPI) Update(ctx context.Context, mv model.Movie) (model.Movie, error) {
	var out model.Movie
	if mv.ID == uuid.Nil {
		return out, ErrEmptyID
	}
	b := bodyOf(mv)
	doc := []patchOp{
		{Op: "replace", Path: "/title", Value: b.Title},
		{Op: "replace", Path: "/description", Value: b.Description},
		{Op: "replace", Path: "/releaseDate", Value: b.ReleaseDate},
		{Op: "replace", Path: "/runTime", Value: b.RunTime},
		{Op: "replace", Path: "/score", Value: b.Score},
		{Op: "replace", Path: "/color", Value: b.Color},
	}
	err := m.c.do(ctx, request{
		method:      http.MethodPatch,
		path:        "api/movies/" + mv.ID.String(),
		contentType: "application/json-patch+json",
		body:        doc,
	}, &out)
	return out, err
}

func (m *MovieAPI) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrEmptyID
	}
	return m.c.do(ctx, request{method: http.MethodDelete, path: "api/movies/" + id.String()}, nil)
}

// AddActor links actorID to movieID and returns the linked actor.
func (m *MovieAPI) AddActor(ctx context.Context, movieID, actorID uuid.UUID) (model.Actor, error) {
	var out model.Actor
	if movieID == uuid.Nil || actorID == uuid.Nil {
		return out, ErrEmptyID
	}
	err := m.c.do(ctx, request{
		method: http.MethodPost,
		path:   "api/movies/" + movieID.String() + "/actors",
		body:   map[string]string{"actorId": actorID.String()},
	}, &out)
	return out, err
}
