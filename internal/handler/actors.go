package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rmdb/internal/dto"
	"github.com/iliyamo/rmdb/internal/service"
)

// ActorHandler serves /api/actors.
type ActorHandler struct {
	Actors *service.ActorService
	Log    *slog.Logger
}

func NewActorHandler(actors *service.ActorService, log *slog.Logger) *ActorHandler {
	if actors == nil {
		panic("nil actor service passed to NewActorHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &ActorHandler{Actors: actors, Log: log}
}

func (h *ActorHandler) List(c echo.Context) error {
	actors, err := h.Actors.List(c.Request().Context())
	if err != nil {
		return fail(c, h.Log, err)
	}
	return respond(c, http.StatusOK, actors)
}

func (h *ActorHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	actor, err := h.Actors.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return respond(c, http.StatusOK, actor)
}

// Create handles POST /api/actors and answers 201 with a Location header.
func (h *ActorHandler) Create(c echo.Context) error {
	var in dto.AddActorDto
	if err := decodeJSON(c, &in); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&in); err != nil {
		return fail(c, h.Log, err)
	}
	ctx := c.Request().Context()
	id, err := h.Actors.Add(ctx, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	created, err := h.Actors.Get(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	c.Response().Header().Set(echo.HeaderLocation, "/api/actors/"+id.String())
	return respond(c, http.StatusCreated, created)
}

func (h *ActorHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	var in dto.EditActorDto
	if err := decodeJSON(c, &in); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&in); err != nil {
		return fail(c, h.Log, err)
	}
	updated, err := h.Actors.Update(c.Request().Context(), id, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return respond(c, http.StatusOK, updated)
}

func (h *ActorHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	if err := h.Actors.Delete(c.Request().Context(), id); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
