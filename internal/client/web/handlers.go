package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rmdb/internal/client/api"
	"github.com/iliyamo/rmdb/internal/client/model"
	"github.com/iliyamo/rmdb/internal/validator"
)

// MovieService is the part of the catalog API the movie pages use.
type MovieService interface {
	GetAll(ctx context.Context) ([]model.Movie, error)
	Get(ctx context.Context, id uuid.UUID) (model.Movie, error)
	Create(ctx context.Context, m model.Movie) (model.Movie, error)
	Update(ctx context.Context, m model.Movie) (model.Movie, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddActor(ctx context.Context, movieID, actorID uuid.UUID) (model.Actor, error)
}

// ActorService is the part of the catalog API the actor pages use.
type ActorService interface {
	GetAll(ctx context.Context) ([]model.Actor, error)
	Get(ctx context.Context, id uuid.UUID) (model.Actor, error)
	Add(ctx context.Context, a model.Actor) (model.Actor, error)
	Update(ctx context.Context, a model.Actor) (model.Actor, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler serves every page of the web client.
type Handler struct {
	Movies    MovieService
	Actors    ActorService
	Validator *validator.Validator
	Log       *slog.Logger
}

func NewHandler(movies MovieService, actors ActorService, log *slog.Logger) *Handler {
	if movies == nil || actors == nil {
		panic("nil service passed to web.NewHandler")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{Movies: movies, Actors: actors, Validator: validator.New(), Log: log}
}

// Register mounts the pages behind the given middleware, in order.
func (h *Handler) Register(e *echo.Echo, protect ...echo.MiddlewareFunc) {
	var mw []echo.MiddlewareFunc
	for _, m := range protect {
		if m != nil {
			mw = append(mw, m)
		}
	}
	g := e.Group("", mw...)
	g.GET("/", h.Home)

	g.GET("/movies", h.MovieIndex)
	g.GET("/movies/create", h.MovieCreateForm)
	g.POST("/movies/create", h.MovieCreate)
	g.GET("/movies/:id", h.MovieDetails)
	g.POST("/movies/:id", h.MovieAddActor)
	g.GET("/movies/:id/edit", h.MovieUpdateForm)
	g.POST("/movies/:id/edit", h.MovieUpdate)
	g.POST("/movies/:id/delete", h.MovieDelete)

	g.GET("/actors", h.ActorIndex)
	g.GET("/actors/create", h.ActorCreateForm)
	g.POST("/actors/create", h.ActorCreate)
	g.GET("/actors/:id/edit", h.ActorUpdateForm)
	g.POST("/actors/:id/edit", h.ActorUpdate)
	g.POST("/actors/:id/delete", h.ActorDelete)
}

func (h *Handler) Home(c echo.Context) error {
	return c.Render(http.StatusOK, "home", &Page{Title: "Home"})
}

// validate runs the struct rules and merges in errs from parsing.
func (h *Handler) validate(form any, errs map[string][]string) map[string][]string {
	if err := h.Validator.Validate(form); err != nil {
		var ve *validator.Errors
		if !errors.As(err, &ve) {
			errs["_"] = append(errs["_"], err.Error())
		} else {
			for k, msgs := range ve.Fields {
				errs[k] = append(errs[k], msgs...)
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusNotFound, "Page not found.")
	}
	return id, nil
}

// ErrorHandler renders failures with the error page.  API errors keep their
// status; anything else is a 500.
func ErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	if log == nil {
		log = slog.Default()
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := "Something went wrong. Please try again later."

		var he *echo.HTTPError
		var se *api.StatusError
		switch {
		case errors.As(err, &he):
			code = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			}
		case errors.As(err, &se):
			switch se.StatusCode {
			case http.StatusNotFound:
				code, msg = http.StatusNotFound, "The requested item does not exist."
			case http.StatusUnauthorized, http.StatusForbidden:
				code, msg = http.StatusForbidden, "You are not allowed to see this."
			default:
				code = http.StatusBadGateway
				msg = "The catalog service answered with an error."
			}
			log.Warn("catalog api error", "error", err)
		default:
			log.Error("page failed", "uri", c.Request().RequestURI, "error", err)
		}
		if rerr := c.Render(code, "error", &Page{Title: "Error", Data: msg}); rerr != nil {
			log.Error("render error page", "error", rerr)
			_ = c.String(code, msg)
		}
	}
}
