package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rmdb/internal/client/api"
	"github.com/iliyamo/rmdb/internal/client/model"
)

type fakeCatalog struct {
	movies map[uuid.UUID]model.Movie
	actors map[uuid.UUID]model.Actor
	order  []uuid.UUID
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{movies: map[uuid.UUID]model.Movie{}, actors: map[uuid.UUID]model.Actor{}}
}

func notFound() error { return &api.StatusError{Method: "GET", StatusCode: http.StatusNotFound} }

func (f *fakeCatalog) GetAll(context.Context) ([]model.Movie, error) {
	var out []model.Movie
	for _, id := range f.order {
		if m, ok := f.movies[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeCatalog) Get(_ context.Context, id uuid.UUID) (model.Movie, error) {
	m, ok := f.movies[id]
	if !ok {
		return m, notFound()
	}
	return m, nil
}

func (f *fakeCatalog) Create(_ context.Context, m model.Movie) (model.Movie, error) {
	m.ID = uuid.New()
	f.movies[m.ID] = m
	f.order = append(f.order, m.ID)
	return m, nil
}

func (f *fakeCatalog) Update(_ context.Context, m model.Movie) (model.Movie, error) {
	old, ok := f.movies[m.ID]
	if !ok {
		return m, notFound()
	}
	m.Actors = old.Actors
	f.movies[m.ID] = m
	return m, nil
}

func (f *fakeCatalog) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.movies[id]; !ok {
		return notFound()
	}
	delete(f.movies, id)
	return nil
}

func (f *fakeCatalog) AddActor(_ context.Context, movieID, actorID uuid.UUID) (model.Actor, error) {
	m, ok := f.movies[movieID]
	a, aok := f.actors[actorID]
	if !ok || !aok {
		return model.Actor{}, notFound()
	}
	m.Actors = append(m.Actors, a)
	f.movies[movieID] = m
	return a, nil
}

// fakeActors shares the catalog maps but satisfies ActorService.
type fakeActors struct{ *fakeCatalog }

func (f fakeActors) GetAll(context.Context) ([]model.Actor, error) {
	var out []model.Actor
	for _, a := range f.actors {
		out = append(out, a)
	}
	return out, nil
}

func (f fakeActors) Get(_ context.Context, id uuid.UUID) (model.Actor, error) {
	a, ok := f.actors[id]
	if !ok {
		return a, notFound()
	}
	return a, nil
}

func (f fakeActors) Add(_ context.Context, a model.Actor) (model.Actor, error) {
	a.ID = uuid.New()
	f.actors[a.ID] = a
	return a, nil
}

func (f fakeActors) Update(_ context.Context, a model.Actor) (model.Actor, error) {
	if _, ok := f.actors[a.ID]; !ok {
		return a, notFound()
	}
	f.actors[a.ID] = a
	return a, nil
}

func (f fakeActors) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.actors, id)
	return nil
}

func newSite(t *testing.T) (*echo.Echo, *fakeCatalog) {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	cat := newFakeCatalog()
	e := echo.New()
	e.Renderer = r
	e.HTTPErrorHandler = ErrorHandler(nil)
	NewHandler(cat, fakeActors{cat}, nil).Register(e, nil)
	return e, cat
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func postForm(e *echo.Echo, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRendererParsesEveryPage(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"home", "error", "movies", "movie_details", "movie_form", "actors", "actor_form"} {
		if _, ok := r.pages[name]; !ok {
			t.Errorf("page %q missing", name)
		}
	}
}

func TestMovieCreateAndList(t *testing.T) {
	e, cat := newSite(t)

	rec := postForm(e, "/movies/create", url.Values{
		"title":       {"Alien"},
		"releaseDate": {"1979-05-25"},
		"runTime":     {"01:57:00"},
		"score":       {"8.5"},
		"color":       {"true"},
	})
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/movies" {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	if len(cat.order) != 1 {
		t.Fatalf("movies = %d", len(cat.order))
	}
	m := cat.movies[cat.order[0]]
	if m.ReleaseDate == nil || !m.ReleaseDate.Equal(time.Date(1979, 5, 25, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("release date = %v", m.ReleaseDate)
	}
	if m.RunTime == nil || m.RunTime.String() != "01:57:00" || !m.Color || m.Score != 8.5 {
		t.Fatalf("movie = %+v", m)
	}

	rec = get(e, "/movies")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Alien") || !strings.Contains(rec.Body.String(), "1979-05-25") {
		t.Fatalf("index: %d %s", rec.Code, rec.Body.String())
	}
}

func TestMovieCreateInvalidRerenders(t *testing.T) {
	e, cat := newSite(t)
	rec := postForm(e, "/movies/create", url.Values{"title": {""}, "releaseDate": {"25/05/1979"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "The title field is required.") || !strings.Contains(body, "yyyy-mm-dd") {
		t.Fatalf("errors not shown: %s", body)
	}
	if !strings.Contains(body, `value="25/05/1979"`) {
		t.Fatal("entered values must be kept")
	}
	if len(cat.order) != 0 {
		t.Fatal("invalid movie stored")
	}
}

func TestMovieDetailsAndAddActor(t *testing.T) {
	e, cat := newSite(t)
	ctx := context.Background()
	movie, _ := cat.Create(ctx, model.Movie{Title: "Heat"})

	rec := get(e, "/movies/"+movie.ID.String())
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `<option value="00000000-0000-0000-0000-000000000000">--</option>`) {
		t.Fatalf("details without actors: %d %s", rec.Code, rec.Body.String())
	}

	actor, _ := fakeActors{cat}.Add(ctx, model.Actor{Name: "Al", LastName: "Pacino"})
	rec = get(e, "/movies/"+movie.ID.String())
	if !strings.Contains(rec.Body.String(), ">Al Pacino</option>") {
		t.Fatalf("picker misses actor: %s", rec.Body.String())
	}

	back := "/movies/" + movie.ID.String()
	rec = postForm(e, back, url.Values{"selected": {actor.ID.String()}})
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != back {
		t.Fatalf("add actor: %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
	if got := cat.movies[movie.ID].Actors; len(got) != 1 || got[0].ID != actor.ID {
		t.Fatalf("cast = %+v", got)
	}

	rec = postForm(e, back, url.Values{"selected": {uuid.Nil.String()}})
	if rec.Code != http.StatusFound || len(cat.movies[movie.ID].Actors) != 1 {
		t.Fatal("placeholder selection must not link anything")
	}

	if rec := get(e, "/movies/"+uuid.NewString()); rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/movies" {
		t.Fatalf("unknown movie: %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
	if rec := get(e, "/movies/not-an-id"); rec.Code != http.StatusNotFound {
		t.Fatalf("malformed id: %d", rec.Code)
	}
}

func TestMovieUpdateAndDelete(t *testing.T) {
	e, cat := newSite(t)
	movie, _ := cat.Create(context.Background(), model.Movie{Title: "Heat", Score: 8})
	edit := "/movies/" + movie.ID.String() + "/edit"

	rec := get(e, edit)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `value="Heat"`) {
		t.Fatalf("edit form: %d %s", rec.Code, rec.Body.String())
	}

	rec = postForm(e, edit, url.Values{"title": {"Heat (1995)"}, "score": {"8.3"}})
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/movies/"+movie.ID.String() {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	if got := cat.movies[movie.ID]; got.Title != "Heat (1995)" || got.Score != 8.3 {
		t.Fatalf("movie = %+v", got)
	}

	rec = postForm(e, "/movies/"+movie.ID.String()+"/delete", nil)
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/movies" {
		t.Fatalf("delete: %d", rec.Code)
	}
	if _, ok := cat.movies[movie.ID]; ok {
		t.Fatal("movie not deleted")
	}
}

func TestActorPages(t *testing.T) {
	e, cat := newSite(t)

	rec := postForm(e, "/actors/create", url.Values{"name": {"Robert"}, "lastName": {"De Niro"}, "birthDate": {"1943-08-17"}})
	if rec.Code != http.StatusFound || rec.Header().Get(echo.HeaderLocation) != "/actors" {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	var id uuid.UUID
	for k, a := range cat.actors {
		id = k
		if a.BirthDate == nil || a.BirthDate.Year() != 1943 {
			t.Fatalf("birth date = %v", a.BirthDate)
		}
	}

	rec = get(e, "/actors")
	if !strings.Contains(rec.Body.String(), "Robert De Niro") {
		t.Fatalf("index: %s", rec.Body.String())
	}

	rec = postForm(e, "/actors/"+id.String()+"/edit", url.Values{"name": {"Bob"}, "lastName": {""}})
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), "The lastName field is required.") {
		t.Fatalf("invalid update: %d %s", rec.Code, rec.Body.String())
	}

	rec = postForm(e, "/actors/"+id.String()+"/edit", url.Values{
		"name": {"Bob"}, "lastName": {"De Niro"}, "birthDate": {"1943-08-17"}, "deceased": {"1900-01-01"},
	})
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), "cannot be before the birth date") {
		t.Fatalf("deceased before birth: %d", rec.Code)
	}

	rec = postForm(e, "/actors/"+id.String()+"/edit", url.Values{"name": {"Bob"}, "lastName": {"De Niro"}})
	if rec.Code != http.StatusFound || cat.actors[id].Name != "Bob" {
		t.Fatalf("update: %d %+v", rec.Code, cat.actors[id])
	}

	if rec := postForm(e, "/actors/"+id.String()+"/delete", nil); rec.Code != http.StatusFound || len(cat.actors) != 0 {
		t.Fatalf("delete: %d", rec.Code)
	}
}

func TestErrorPage(t *testing.T) {
	e, _ := newSite(t)
	e.GET("/boom", func(c echo.Context) error {
		return &api.StatusError{Method: "GET", URL: "http://api/api/movies", StatusCode: http.StatusInternalServerError}
	})
	rec := get(e, "/boom")
	if rec.Code != http.StatusBadGateway || !strings.Contains(rec.Body.String(), "catalog service answered with an error") {
		t.Fatalf("error page: %d %s", rec.Code, rec.Body.String())
	}
}

func TestFormsRequireCSRFToken(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	cat := newFakeCatalog()
	movie, _ := cat.Create(context.Background(), model.Movie{Title: "Heat"})
	e := echo.New()
	e.Renderer = r
	e.HTTPErrorHandler = ErrorHandler(nil)
	NewHandler(cat, fakeActors{cat}, nil).Register(e, CSRF(false))

	rec := get(e, "/movies")
	var ck *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == csrfCookie {
			ck = c
		}
	}
	if ck == nil || ck.Value == "" {
		t.Fatalf("no csrf cookie: %v", rec.Result().Cookies())
	}
	if ck.SameSite != http.SameSiteLaxMode || !ck.HttpOnly {
		t.Fatalf("csrf cookie = %+v", ck)
	}
	if !strings.Contains(rec.Body.String(), `name="_csrf" value="`+ck.Value+`"`) {
		t.Fatalf("delete form lacks the token: %s", rec.Body.String())
	}

	deleteWith := func(token string) *httptest.ResponseRecorder {
		form := url.Values{"_csrf": {token}}
		req := httptest.NewRequest(http.MethodPost, "/movies/"+movie.ID.String()+"/delete", strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
		req.AddCookie(ck)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	if rec := deleteWith("forged"); rec.Code != http.StatusForbidden {
		t.Fatalf("forged token: %d", rec.Code)
	}
	if _, ok := cat.movies[movie.ID]; !ok {
		t.Fatal("movie deleted without a valid token")
	}
	if rec := deleteWith(ck.Value); rec.Code != http.StatusFound {
		t.Fatalf("valid token: %d %s", rec.Code, rec.Body.String())
	}
	if _, ok := cat.movies[movie.ID]; ok {
		t.Fatal("movie not deleted")
	}
}
