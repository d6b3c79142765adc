package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rmdb/internal/config"
	"github.com/iliyamo/rmdb/internal/database/dbtest"
	"github.com/iliyamo/rmdb/internal/handler"
	"github.com/iliyamo/rmdb/internal/middleware"
	"github.com/iliyamo/rmdb/internal/repository"
	"github.com/iliyamo/rmdb/internal/service"
	"github.com/iliyamo/rmdb/internal/validator"
)

func newAPI(t *testing.T, verifier middleware.TokenVerifier, country string) *echo.Echo {
	t.Helper()
	return newAPIWith(t, CatalogDeps{Verifier: verifier, RequiredCountry: country})
}

// newAPIWith fills in the handlers of d over a fresh database.
func newAPIWith(t *testing.T, d CatalogDeps) *echo.Echo {
	t.Helper()
	db := dbtest.New(t)
	movies := repository.NewMovieRepo(db)
	actors := repository.NewActorRepo(db)

	e := echo.New()
	e.Validator = validator.New()
	e.HTTPErrorHandler = handler.ErrorHandler(nil)
	RegisterRoutes(e, db)
	d.Movies = handler.NewMovieHandler(service.NewMovieService(movies, actors, nil, nil), nil)
	d.Actors = handler.NewActorHandler(service.NewActorService(actors, nil, nil), nil)
	RegisterCatalog(e, d)
	return e
}

func signHS256(t *testing.T, secret, sub, country string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub, "country": country, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

type call struct {
	method, target, body string
	contentType, accept  string
	auth                 string
}

func do(e *echo.Echo, c call) *httptest.ResponseRecorder {
	req := httptest.NewRequest(c.method, c.target, strings.NewReader(c.body))
	if c.contentType != "" {
		req.Header.Set(echo.HeaderContentType, c.contentType)
	}
	if c.accept != "" {
		req.Header.Set(echo.HeaderAccept, c.accept)
	}
	if c.auth != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+c.auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func createMovie(t *testing.T, e *echo.Echo, body string) string {
	t.Helper()
	rec := do(e, call{method: http.MethodPost, target: "/api/movies", body: body, contentType: "application/json"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create movie: %d %s", rec.Code, rec.Body.String())
	}
	var out struct {
		ID string `json:"id"`
	}
	decode(t, rec, &out)
	if rec.Header().Get(echo.HeaderLocation) != "/api/movies/"+out.ID {
		t.Fatalf("location = %q", rec.Header().Get(echo.HeaderLocation))
	}
	return out.ID
}

func createActor(t *testing.T, e *echo.Echo, body string) string {
	t.Helper()
	rec := do(e, call{
		method: http.MethodPost, target: "/api/actors", body: body,
		contentType: handler.MIMEActorToAdd, accept: handler.MIMEActor,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create actor: %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != handler.MIMEActor {
		t.Fatalf("actor content type = %q", ct)
	}
	var out struct {
		ID string `json:"id"`
	}
	decode(t, rec, &out)
	return out.ID
}

func TestHealth(t *testing.T) {
	e := newAPI(t, nil, "")
	rec := do(e, call{method: http.MethodGet, target: "/healthz"})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("healthz: %d %s", rec.Code, rec.Body.String())
	}
}

func TestMovieLifecycle(t *testing.T) {
	e := newAPI(t, nil, "")
	id := createMovie(t, e, `{"title":"Alien","releaseDate":"1979-05-25T00:00:00Z","runTime":"01:57:00","score":8.5,"color":true}`)

	rec := do(e, call{method: http.MethodGet, target: "/api/movies"})
	var list []map[string]any
	decode(t, rec, &list)
	if len(list) != 1 || list[0]["title"] != "Alien" {
		t.Fatalf("list = %v", list)
	}

	rec = do(e, call{method: http.MethodGet, target: "/api/movies/" + id})
	var withActors map[string]any
	decode(t, rec, &withActors)
	if withActors["runTime"] != "01:57:00" {
		t.Fatalf("runTime = %v", withActors["runTime"])
	}
	if actors, ok := withActors["actors"].([]any); !ok || len(actors) != 0 {
		t.Fatalf("actors = %#v", withActors["actors"])
	}

	rec = do(e, call{method: http.MethodGet, target: "/api/movies/" + id, accept: handler.MIMEMovie})
	if ct := rec.Header().Get(echo.HeaderContentType); ct != handler.MIMEMovie {
		t.Fatalf("content type = %q", ct)
	}
	var bare map[string]any
	decode(t, rec, &bare)
	if _, ok := bare["actors"]; ok {
		t.Fatal("plain movie representation must not carry actors")
	}

	rec = do(e, call{
		method: http.MethodPut, target: "/api/movies/" + id, contentType: "application/json",
		body: `{"title":"Aliens","score":8.4,"color":true}`,
	})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"Aliens"`) {
		t.Fatalf("put: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(e, call{
		method: http.MethodPatch, target: "/api/movies/" + id, contentType: handler.MIMEJSONPatch,
		body: `[{"op":"replace","path":"/title","value":"Alien 3"},{"op":"replace","path":"/description","value":"Fury 161"}]`,
	})
	var patched map[string]any
	decode(t, rec, &patched)
	if rec.Code != http.StatusOK || patched["title"] != "Alien 3" || patched["description"] != "Fury 161" {
		t.Fatalf("patch: %d %v", rec.Code, patched)
	}
	if patched["score"] != 8.4 {
		t.Fatalf("patch must keep untouched fields, score = %v", patched["score"])
	}

	if rec := do(e, call{method: http.MethodDelete, target: "/api/movies/" + id}); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	if rec := do(e, call{method: http.MethodGet, target: "/api/movies/" + id}); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", rec.Code)
	}
	if rec := do(e, call{method: http.MethodDelete, target: "/api/movies/" + id}); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: %d", rec.Code)
	}
}

func TestMovieRequestErrors(t *testing.T) {
	e := newAPI(t, nil, "")
	id := createMovie(t, e, `{"title":"Heat"}`)

	cases := []struct {
		name string
		c    call
		want int
	}{
		{"nil id", call{method: http.MethodGet, target: "/api/movies/00000000-0000-0000-0000-000000000000"}, http.StatusBadRequest},
		{"malformed id", call{method: http.MethodGet, target: "/api/movies/heat"}, http.StatusNotFound},
		{"unknown id", call{method: http.MethodGet, target: "/api/movies/7d9a3c5e-1b2f-4e6a-9c8d-0f1e2d3c4b5a"}, http.StatusNotFound},
		{"not acceptable", call{method: http.MethodGet, target: "/api/movies/" + id, accept: "application/xml"}, http.StatusNotAcceptable},
		{"unsupported body", call{method: http.MethodPost, target: "/api/movies", body: "Heat", contentType: "text/plain"}, http.StatusUnsupportedMediaType},
		{"malformed body", call{method: http.MethodPost, target: "/api/movies", body: "{", contentType: "application/json"}, http.StatusBadRequest},
		{"nil id patch", call{method: http.MethodPatch, target: "/api/movies/00000000-0000-0000-0000-000000000000", body: "[]", contentType: handler.MIMEJSONPatch}, http.StatusBadRequest},
		{"broken patch", call{method: http.MethodPatch, target: "/api/movies/" + id, body: `[{"op":"remove","path":"/nope"}]`, contentType: handler.MIMEJSONPatch}, http.StatusUnprocessableEntity},
		{"patch to empty title", call{method: http.MethodPatch, target: "/api/movies/" + id, body: `[{"op":"replace","path":"/title","value":""}]`, contentType: handler.MIMEJSONPatch}, http.StatusUnprocessableEntity},
		{"unknown route", call{method: http.MethodGet, target: "/api/directors"}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(e, tc.c)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.want, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), `"error"`) && rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("missing error envelope: %s", rec.Body.String())
			}
		})
	}
}

func TestValidationProblem(t *testing.T) {
	e := newAPI(t, nil, "")
	rec := do(e, call{method: http.MethodPost, target: "/api/movies", body: `{"title":"","description":""}`, contentType: "application/json"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != handler.MIMEProblem {
		t.Fatalf("content type = %q", ct)
	}
	var p struct {
		Title  string              `json:"title"`
		Status int                 `json:"status"`
		Errors map[string][]string `json:"errors"`
	}
	decode(t, rec, &p)
	if p.Status != http.StatusUnprocessableEntity || p.Title != "One or more validation errors occurred." {
		t.Fatalf("problem = %+v", p)
	}
	if got := p.Errors["title"]; len(got) != 1 || got[0] != "The title field is required." {
		t.Fatalf("title errors = %v", got)
	}
	if _, ok := p.Errors["description"]; !ok {
		t.Fatalf("description errors missing: %v", p.Errors)
	}
}

func TestActorsAndCast(t *testing.T) {
	e := newAPI(t, nil, "")
	movie := createMovie(t, e, `{"title":"Heat"}`)
	actor := createActor(t, e, `{"name":"Al","lastName":"Pacino","birthDate":"1940-04-25T00:00:00Z"}`)

	rec := do(e, call{method: http.MethodGet, target: "/api/actors/" + actor})
	var detail map[string]any
	decode(t, rec, &detail)
	if detail["fullName"] != "Al Pacino" || detail["birthDate"] != "1940-04-25T00:00:00Z" {
		t.Fatalf("actor = %v", detail)
	}

	link := call{method: http.MethodPost, target: "/api/movies/" + movie + "/actors", body: `{"actorId":"` + actor + `"}`, contentType: "application/json"}
	if rec := do(e, link); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Pacino") {
		t.Fatalf("link: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(e, link); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate link: %d", rec.Code)
	}
	missing := link
	missing.body = `{"actorId":"7d9a3c5e-1b2f-4e6a-9c8d-0f1e2d3c4b5a"}`
	if rec := do(e, missing); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown actor: %d", rec.Code)
	}
	empty := link
	empty.body = `{}`
	if rec := do(e, empty); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("missing actorId: %d", rec.Code)
	}

	rec = do(e, call{method: http.MethodGet, target: "/api/movies/" + movie, accept: handler.MIMEMovieWithActors})
	var withActors struct {
		Actors []struct {
			ID string `json:"id"`
		} `json:"actors"`
	}
	decode(t, rec, &withActors)
	if len(withActors.Actors) != 1 || withActors.Actors[0].ID != actor {
		t.Fatalf("cast = %+v", withActors.Actors)
	}

	rec = do(e, call{
		method: http.MethodPut, target: "/api/actors/" + actor, contentType: handler.MIMEActorToEdit,
		body: `{"name":"Alfredo","lastName":"Pacino"}`,
	})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Alfredo Pacino") {
		t.Fatalf("update actor: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(e, call{method: http.MethodPut, target: "/api/actors/" + actor, contentType: handler.MIMEActorToAdd, body: `{}`}); rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("wrong vendor type: %d", rec.Code)
	}

	if rec := do(e, call{method: http.MethodDelete, target: "/api/actors/" + actor}); rec.Code != http.StatusNoContent {
		t.Fatalf("delete actor: %d", rec.Code)
	}
	rec = do(e, call{method: http.MethodGet, target: "/api/movies/" + movie})
	decode(t, rec, &withActors)
	if len(withActors.Actors) != 0 {
		t.Fatalf("deleted actor still in cast: %+v", withActors.Actors)
	}
}

func TestCatalogRequiresToken(t *testing.T) {
	const secret = "test-secret"
	e := newAPI(t, middleware.NewHS256Verifier(secret), "BE")

	sign := func(country string) string { return signHS256(t, secret, "alice", country) }

	if rec := do(e, call{method: http.MethodGet, target: "/api/movies"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: %d", rec.Code)
	}
	if rec := do(e, call{method: http.MethodGet, target: "/api/movies", auth: sign("FR")}); rec.Code != http.StatusForbidden {
		t.Fatalf("wrong country: %d", rec.Code)
	}
	if rec := do(e, call{method: http.MethodGet, target: "/api/movies", auth: sign("BE")}); rec.Code != http.StatusOK {
		t.Fatalf("authorized: %d", rec.Code)
	}
	if rec := do(e, call{method: http.MethodGet, target: "/healthz"}); rec.Code != http.StatusOK {
		t.Fatalf("healthz must stay open: %d", rec.Code)
	}
}

func TestRateLimitPerUser(t *testing.T) {
	const secret = "test-secret"
	e := newAPIWith(t, CatalogDeps{
		Verifier: middleware.NewHS256Verifier(secret),
		RateLimit: config.RateLimitConfig{
			Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Hour,
			TTL: time.Hour, KeyStrategy: "user", Prefix: "rl", Debug: true,
		},
	})
	alice := signHS256(t, secret, "alice", "BE")
	bob := signHS256(t, secret, "bob", "BE")

	rec := do(e, call{method: http.MethodGet, target: "/api/movies", auth: alice})
	if rec.Code != http.StatusOK {
		t.Fatalf("alice first: %d", rec.Code)
	}
	if got := rec.Header().Get("X-RateLimit-Key"); got != "rl:user:alice" {
		t.Fatalf("key = %q", got)
	}
	if rec := do(e, call{method: http.MethodGet, target: "/api/movies", auth: alice}); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("alice second: %d", rec.Code)
	}
	rec = do(e, call{method: http.MethodGet, target: "/api/movies", auth: bob})
	if rec.Code != http.StatusOK {
		t.Fatalf("bob shares alice's bucket: %d", rec.Code)
	}
	if got := rec.Header().Get("X-RateLimit-Key"); got != "rl:user:bob" {
		t.Fatalf("key = %q", got)
	}
}

func TestRateLimitByIPRunsBeforeAuth(t *testing.T) {
	e := newAPIWith(t, CatalogDeps{
		Verifier: middleware.NewHS256Verifier("test-secret"),
		RateLimit: config.RateLimitConfig{
			Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Hour,
			TTL: time.Hour, KeyStrategy: "ip", Prefix: "rl",
		},
	})
	if rec := do(e, call{method: http.MethodGet, target: "/api/movies"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("first: %d", rec.Code)
	}
	if rec := do(e, call{method: http.MethodGet, target: "/api/movies"}); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("anonymous callers must be limited too: %d", rec.Code)
	}
}
