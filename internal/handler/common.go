package handler // handler defines the HTTP handlers of the catalog API

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rmdb/internal/middleware"
	"github.com/iliyamo/rmdb/internal/service"
	"github.com/iliyamo/rmdb/internal/validator"
)

// Media types served and accepted by the catalog API.
const (
	MIMEJSON            = echo.MIMEApplicationJSON
	MIMEJSONPatch       = "application/json-patch+json"
	MIMEProblem         = "application/problem+json"
	MIMEMovie           = "application/vnd.rmdb.movie+json"
	MIMEMovieWithActors = "application/vnd.rmdb.moviewithactors+json"
	MIMEActor           = "application/vnd.rmdb.actor.v1+json"
	MIMEActorToAdd      = "application/vnd.rmdb.actortoadd.v1+json"
	MIMEActorToEdit     = "application/vnd.rmdb.actortoedit.v1+json"
)

const maxBodyBytes = 1 << 20

var (
	errBadID   = errors.New("malformed id")
	errEmptyID = errors.New("id must not be empty")
)

// parseID reads the :id path parameter.  Anything that is not a UUID is
// treated as an unknown route.
func parseID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errBadID
	}
	return id, nil
}

// decodeJSON reads a JSON body regardless of its (vendor) content type.
func decodeJSON(c echo.Context, v any) error {
	dec := json.NewDecoder(io.LimitReader(c.Request().Body, maxBodyBytes))
	return dec.Decode(v)
}

// respond writes v using the media type negotiated by middleware.Produces.
func respond(c echo.Context, status int, v any) error {
	c.Response().Header().Set(echo.HeaderContentType, middleware.MediaType(c))
	return c.JSON(status, v)
}

// problem is the 422 payload shape.
type problem struct {
	Type   string              `json:"type"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors map[string][]string `json:"errors"`
}

func validationProblem(c echo.Context, fields map[string][]string) error {
	c.Response().Header().Set(echo.HeaderContentType, MIMEProblem)
	return c.JSON(http.StatusUnprocessableEntity, problem{
		Type:   "https://tools.ietf.org/html/rfc4918#section-11.2",
		Title:  "One or more validation errors occurred.",
		Status: http.StatusUnprocessableEntity,
		Detail: "See the errors field for details.",
		Errors: fields,
	})
}

// fail maps service and validation errors onto HTTP responses.  Anything
// unexpected is logged and reported as 500 without internals.
func fail(c echo.Context, log *slog.Logger, err error) error {
	var ve *validator.Errors
	switch {
	case errors.Is(err, errBadID):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, errEmptyID):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": errEmptyID.Error()})
	case errors.As(err, &ve):
		return validationProblem(c, ve.Fields)
	case errors.Is(err, service.ErrInvalidPatch):
		return validationProblem(c, map[string][]string{"patch": {err.Error()}})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyLinked):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	log.Error("request failed", "method", c.Request().Method, "uri", c.Request().RequestURI, "error", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}

func badBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
}
