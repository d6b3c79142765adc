package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rmdb/internal/client/model"
	"github.com/iliyamo/rmdb/internal/database/dbtest"
	"github.com/iliyamo/rmdb/internal/dto"
	"github.com/iliyamo/rmdb/internal/handler"
	"github.com/iliyamo/rmdb/internal/repository"
	"github.com/iliyamo/rmdb/internal/router"
	"github.com/iliyamo/rmdb/internal/service"
	"github.com/iliyamo/rmdb/internal/validator"
)

// catalogServer runs the real API on an in-memory database.
func catalogServer(t *testing.T) *Client {
	t.Helper()
	db := dbtest.New(t)
	movies := repository.NewMovieRepo(db)
	actors := repository.NewActorRepo(db)

	e := echo.New()
	e.Validator = validator.New()
	e.HTTPErrorHandler = handler.ErrorHandler(nil)
	router.RegisterCatalog(e, router.CatalogDeps{
		Movies: handler.NewMovieHandler(service.NewMovieService(movies, actors, nil, nil), nil),
		Actors: handler.NewActorHandler(service.NewActorService(actors, nil, nil), nil),
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, 5*time.Second, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestClientAgainstCatalog(t *testing.T) {
	ctx := context.Background()
	c := catalogServer(t)

	released := time.Date(1995, 12, 15, 0, 0, 0, 0, time.UTC)
	rt := dto.TimeSpan(170 * time.Minute)
	created, err := c.Movies.Create(ctx, model.Movie{Title: "Heat", ReleaseDate: &released, RunTime: &rt, Score: 8.3, Color: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == uuid.Nil || created.RunTime == nil || created.RunTime.String() != "02:50:00" {
		t.Fatalf("created = %+v", created)
	}

	desc := "A group of professional bank robbers."
	created.Description = &desc
	created.Title = "Heat (1995)"
	created.RunTime = nil
	updated, err := c.Movies.Update(ctx, created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Heat (1995)" || updated.Description == nil || *updated.Description != desc || updated.RunTime != nil {
		t.Fatalf("updated = %+v", updated)
	}
	if updated.ReleaseDate == nil || !updated.ReleaseDate.Equal(released) {
		t.Fatalf("release date lost: %v", updated.ReleaseDate)
	}

	actor, err := c.Actors.Add(ctx, model.Actor{Name: "Robert", LastName: "De Niro"})
	if err != nil {
		t.Fatalf("add actor: %v", err)
	}
	actor.Name = "Bob"
	if actor, err = c.Actors.Update(ctx, actor); err != nil || actor.DisplayName() != "Bob De Niro" {
		t.Fatalf("update actor: %+v %v", actor, err)
	}
	if _, err := c.Movies.AddActor(ctx, created.ID, actor.ID); err != nil {
		t.Fatalf("add actor to movie: %v", err)
	}
	if _, err := c.Movies.AddActor(ctx, created.ID, actor.ID); !IsStatus(err, http.StatusConflict) {
		t.Fatalf("duplicate link err = %v", err)
	}

	full, err := c.Movies.Get(ctx, created.ID)
	if err != nil || len(full.Actors) != 1 || full.Actors[0].ID != actor.ID {
		t.Fatalf("get: %+v %v", full, err)
	}
	all, err := c.Actors.GetAll(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("actors: %v %v", all, err)
	}

	if err := c.Movies.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := c.Movies.Get(ctx, created.ID); !IsStatus(err, http.StatusNotFound) {
		t.Fatalf("get after delete err = %v", err)
	}
	if err := c.Actors.Delete(ctx, actor.ID); err != nil {
		t.Fatalf("delete actor: %v", err)
	}
	if movies, err := c.Movies.GetAll(ctx); err != nil || len(movies) != 0 {
		t.Fatalf("movies after delete: %v %v", movies, err)
	}
}

func TestEmptyIDsNeverLeaveTheClient(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	defer srv.Close()
	c, err := New(srv.URL, time.Second, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := c.Movies.Get(ctx, uuid.Nil); !errors.Is(err, ErrEmptyID) {
		t.Fatalf("movie get: %v", err)
	}
	if err := c.Movies.Delete(ctx, uuid.Nil); !errors.Is(err, ErrEmptyID) {
		t.Fatalf("movie delete: %v", err)
	}
	if _, err := c.Movies.Update(ctx, model.Movie{Title: "x"}); !errors.Is(err, ErrEmptyID) {
		t.Fatalf("movie update: %v", err)
	}
	if _, err := c.Movies.AddActor(ctx, uuid.New(), uuid.Nil); !errors.Is(err, ErrEmptyID) {
		t.Fatalf("add actor: %v", err)
	}
	if _, err := c.Actors.Get(ctx, uuid.Nil); !errors.Is(err, ErrEmptyID) {
		t.Fatalf("actor get: %v", err)
	}
	if calls != 0 {
		t.Fatalf("server saw %d requests", calls)
	}
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") == "" {
			t.Error("missing Accept header")
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(strings.Repeat("x", 2*maxErrorBody)))
	}))
	defer srv.Close()
	c, err := New(srv.URL+"/", time.Second, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Movies.GetAll(context.Background())
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v", err)
	}
	if se.StatusCode != http.StatusServiceUnavailable || se.Method != http.MethodGet || len(se.Body) != maxErrorBody {
		t.Fatalf("status error = %+v", se)
	}
	if !strings.HasSuffix(se.URL, "/api/movies") {
		t.Fatalf("url = %q", se.URL)
	}
}

func TestNewRejectsRelativeBase(t *testing.T) {
	if _, err := New("localhost:52330", time.Second, nil); err == nil {
		t.Fatal("relative base url accepted")
	}
}
