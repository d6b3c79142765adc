package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rmdb/internal/dto"
	"github.com/iliyamo/rmdb/internal/middleware"
	"github.com/iliyamo/rmdb/internal/service"
)

// MovieHandler serves /api/movies.
type MovieHandler struct {
	Movies *service.MovieService
	Log    *slog.Logger
}

func NewMovieHandler(movies *service.MovieService, log *slog.Logger) *MovieHandler {
	if movies == nil {
		panic("nil movie service passed to NewMovieHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &MovieHandler{Movies: movies, Log: log}
}

// List handles GET /api/movies.
func (h *MovieHandler) List(c echo.Context) error {
	movies, err := h.Movies.List(c.Request().Context())
	if err != nil {
		return fail(c, h.Log, err)
	}
	return respond(c, http.StatusOK, movies)
}

// Get handles GET /api/movies/:id.  The negotiated media type selects the
// representation: the movie with its cast by default, the bare movie for
// application/vnd.rmdb.movie+json.
func (h *MovieHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	if id == uuid.Nil {
		return fail(c, h.Log, errEmptyID)
	}

	ctx := c.Request().Context()
	if middleware.MediaType(c) == MIMEMovie {
		movie, err := h.Movies.Get(ctx, id)
		if err != nil {
			return fail(c, h.Log, err)
		}
		return respond(c, http.StatusOK, movie)
	}
	movie, err := h.Movies.GetWithActors(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return respond(c, http.StatusOK, movie)
}

// Create handles POST /api/movies.
func (h *MovieHandler) Create(c echo.Context) error {
	var in dto.AddMovieDto
	if err := decodeJSON(c, &in); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&in); err != nil {
		return fail(c, h.Log, err)
	}
	ctx := c.Request().Context()
	id, err := h.Movies.Add(ctx, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	created, err := h.Movies.Get(ctx, id)
	if err != nil {
		return fail(c, h.Log, err)
	}
	c.Response().Header().Set(echo.HeaderLocation, "/api/movies/"+id.String())
	return respond(c, http.StatusCreated, created)
}

// Update handles PUT /api/movies/:id.
func (h *MovieHandler) Update(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	var in dto.EditMovieDto
	if err := decodeJSON(c, &in); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&in); err != nil {
		return fail(c, h.Log, err)
	}
	updated, err := h.Movies.Update(c.Request().Context(), id, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return respond(c, http.StatusOK, updated)
}

// Patch handles PATCH /api/movies/:id with an RFC 6902 document.
func (h *MovieHandler) Patch(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	if id == uuid.Nil {
		return fail(c, h.Log, errEmptyID)
	}
	doc, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		return badBody(c)
	}
	patched, err := h.Movies.Patch(c.Request().Context(), id, doc, func(e *dto.EditMovieDto) error {
		return c.Validate(e)
	})
	if err != nil {
		return fail(c, h.Log, err)
	}
	return respond(c, http.StatusOK, patched)
}

// Delete handles DELETE /api/movies/:id.
func (h *MovieHandler) Delete(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	if err := h.Movies.Delete(c.Request().Context(), id); err != nil {
		return fail(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddActor handles POST and PUT /api/movies/:id/actors.
func (h *MovieHandler) AddActor(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, h.Log, err)
	}
	var in dto.AddActorToMovieDto
	if err := decodeJSON(c, &in); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&in); err != nil {
		return fail(c, h.Log, err)
	}
	actor, err := h.Movies.AddActorToMovie(c.Request().Context(), id, in)
	if err != nil {
		return fail(c, h.Log, err)
	}
	return respond(c, http.StatusOK, actor)
}
