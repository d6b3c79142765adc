package web

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/rmdb/internal/client/api"
)

func (h *Handler) ActorIndex(c echo.Context) error {
	actors, err := h.Actors.GetAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "actors", &Page{Title: "Actors", Data: actors})
}

func (h *Handler) ActorCreateForm(c echo.Context) error {
	return c.Render(http.StatusOK, "actor_form", &Page{Title: "New actor", Data: ActorForm{}})
}

func (h *Handler) ActorCreate(c echo.Context) error {
	var form ActorForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "The form could not be read.")
	}
	form.ID = uuid.Nil
	errs := map[string][]string{}
	actor := form.Actor(errs)
	if errs = h.validate(&form, errs); errs != nil {
		return c.Render(http.StatusUnprocessableEntity, "actor_form", &Page{Title: "New actor", Data: form, Errors: errs})
	}
	if _, err := h.Actors.Add(c.Request().Context(), actor); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/actors")
}

func (h *Handler) ActorUpdateForm(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	actor, err := h.Actors.Get(c.Request().Context(), id)
	if api.IsStatus(err, http.StatusNotFound) {
		return c.Redirect(http.StatusFound, "/actors")
	}
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "actor_form", &Page{Title: "Edit " + actor.DisplayName(), Data: actorFormOf(actor)})
}

func (h *Handler) ActorUpdate(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var form ActorForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "The form could not be read.")
	}
	form.ID = id
	errs := map[string][]string{}
	actor := form.Actor(errs)
	if errs = h.validate(&form, errs); errs != nil {
		return c.Render(http.StatusUnprocessableEntity, "actor_form", &Page{Title: "Edit actor", Data: form, Errors: errs})
	}
	if _, err := h.Actors.Update(c.Request().Context(), actor); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/actors")
}

func (h *Handler) ActorDelete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.Actors.Delete(c.Request().Context(), id); err != nil && !api.IsStatus(err, http.StatusNotFound) {
		return err
	}
	return c.Redirect(http.StatusFound, "/actors")
}
