package web

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rmdb/internal/client/api"
	"github.com/iliyamo/rmdb/internal/client/model"
)

// SelectItem is one option of the actor picker.
type SelectItem struct {
	Text  string
	Value string
}

type movieDetails struct {
	Movie model.Movie
	Items []SelectItem
}

func (h *Handler) MovieIndex(c echo.Context) error {
	movies, err := h.Movies.GetAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "movies", &Page{Title: "Movies", Data: movies})
}

// MovieDetails shows a movie, its cast and a picker with every actor.  An
// unknown movie sends the user back to the list.
func (h *Handler) MovieDetails(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	movie, err := h.Movies.Get(ctx, id)
	if api.IsStatus(err, http.StatusNotFound) {
		return c.Redirect(http.StatusFound, "/movies")
	}
	if err != nil {
		return err
	}
	actors, err := h.Actors.GetAll(ctx)
	if err != nil {
		return err
	}

	items := make([]SelectItem, 0, len(actors))
	for _, a := range actors {
		items = append(items, SelectItem{Text: a.Name + " " + a.LastName, Value: a.ID.String()})
	}
	if len(items) == 0 {
		items = append(items, SelectItem{Text: "--", Value: uuid.Nil.String()})
	}
	return c.Render(http.StatusOK, "movie_details", &Page{
		Title: movie.Title,
		Data:  movieDetails{Movie: movie, Items: items},
	})
}

// MovieAddActor links the picked actor and returns to the details page.
// A failed link (placeholder picked, already linked, unknown actor) is
// logged and the page is shown again.
func (h *Handler) MovieAddActor(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	back := "/movies/" + id.String()
	actorID, err := uuid.Parse(c.FormValue("selected"))
	if err != nil || actorID == uuid.Nil {
		return c.Redirect(http.StatusFound, back)
	}
	if _, err := h.Movies.AddActor(c.Request().Context(), id, actorID); err != nil {
		h.Log.Warn("add actor to movie", "movie", id, "actor", actorID, "error", err)
	}
	return c.Redirect(http.StatusFound, back)
}

func (h *Handler) MovieCreateForm(c echo.Context) error {
	return c.Render(http.StatusOK, "movie_form", &Page{Title: "New movie", Data: MovieForm{}})
}

func (h *Handler) MovieCreate(c echo.Context) error {
	var form MovieForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "The form could not be read.")
	}
	form.ID = uuid.Nil
	errs := map[string][]string{}
	movie := form.Movie(errs)
	if errs = h.validate(&form, errs); errs != nil {
		return c.Render(http.StatusUnprocessableEntity, "movie_form", &Page{Title: "New movie", Data: form, Errors: errs})
	}
	if _, err := h.Movies.Create(c.Request().Context(), movie); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/movies")
}

func (h *Handler) MovieUpdateForm(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	movie, err := h.Movies.Get(c.Request().Context(), id)
	if api.IsStatus(err, http.StatusNotFound) {
		return c.Redirect(http.StatusFound, "/movies/create")
	}
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "movie_form", &Page{Title: "Edit " + movie.Title, Data: movieFormOf(movie)})
}

func (h *Handler) MovieUpdate(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var form MovieForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "The form could not be read.")
	}
	form.ID = id
	errs := map[string][]string{}
	movie := form.Movie(errs)
	if errs = h.validate(&form, errs); errs != nil {
		return c.Render(http.StatusUnprocessableEntity, "movie_form", &Page{Title: "Edit movie", Data: form, Errors: errs})
	}
	if _, err := h.Movies.Update(c.Request().Context(), movie); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/movies/"+id.String())
}

func (h *Handler) MovieDelete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.Movies.Delete(c.Request().Context(), id); err != nil && !api.IsStatus(err, http.StatusNotFound) {
		return err
	}
	return c.Redirect(http.StatusFound, "/movies")
}
