package web

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/rmdb/internal/client/model"
	"github.com/iliyamo/rmdb/internal/dto"
)

const dateLayout = "2006-01-02"

// MovieForm is the create/update form of a movie.  Dates and run time
// arrive as text and are parsed by Movie.
type MovieForm struct {
	ID          uuid.UUID `json:"id" form:"-"`
	Title       string    `json:"title" form:"title" validate:"required,min=1,max=100"`
	Description string    `json:"description" form:"description" validate:"max=500"`
	ReleaseDate string    `json:"releaseDate" form:"releaseDate"`
	RunTime     string    `json:"runTime" form:"runTime"`
	Score       float64   `json:"score" form:"score" validate:"gte=0,lte=10"`
	Color       bool      `json:"color" form:"color"`
}

func movieFormOf(m model.Movie) MovieForm {
	f := MovieForm{ID: m.ID, Title: m.Title, Score: m.Score, Color: m.Color}
	if m.Description != nil {
		f.Description = *m.Description
	}
	if m.ReleaseDate != nil {
		f.ReleaseDate = m.ReleaseDate.Format(dateLayout)
	}
	if m.RunTime != nil {
		f.RunTime = m.RunTime.String()
	}
	return f
}

// Movie converts the form, adding parse failures to errs.
func (f MovieForm) Movie(errs map[string][]string) model.Movie {
	m := model.Movie{ID: f.ID, Title: strings.TrimSpace(f.Title), Score: f.Score, Color: f.Color}
	if d := strings.TrimSpace(f.Description); d != "" {
		m.Description = &d
	}
	if t, ok := parseDate(f.ReleaseDate, "releaseDate", errs); ok {
		m.ReleaseDate = t
	}
	if s := strings.TrimSpace(f.RunTime); s != "" {
		ts, err := dto.ParseTimeSpan(s)
		if err != nil {
			errs["runTime"] = append(errs["runTime"], "Use the format hh:mm:ss.")
		} else {
			m.RunTime = &ts
		}
	}
	return m
}

// ActorForm is the create/update form of an actor.
type ActorForm struct {
	ID        uuid.UUID `json:"id" form:"-"`
	Name      string    `json:"name" form:"name" validate:"required,min=1,max=50"`
	LastName  string    `json:"lastName" form:"lastName" validate:"required,min=1,max=50"`
	BirthDate string    `json:"birthDate" form:"birthDate"`
	Deceased  string    `json:"deceased" form:"deceased"`
}

func actorFormOf(a model.Actor) ActorForm {
	f := ActorForm{ID: a.ID, Name: a.Name, LastName: a.LastName}
	if a.BirthDate != nil {
		f.BirthDate = a.BirthDate.Format(dateLayout)
	}
	if a.Deceased != nil {
		f.Deceased = a.Deceased.Format(dateLayout)
	}
	return f
}

func (f ActorForm) Actor(errs map[string][]string) model.Actor {
	a := model.Actor{ID: f.ID, Name: strings.TrimSpace(f.Name), LastName: strings.TrimSpace(f.LastName)}
	if t, ok := parseDate(f.BirthDate, "birthDate", errs); ok {
		a.BirthDate = t
	}
	if t, ok := parseDate(f.Deceased, "deceased", errs); ok {
		a.Deceased = t
	}
	if a.BirthDate != nil && a.Deceased != nil && a.Deceased.Before(*a.BirthDate) {
		errs["deceased"] = append(errs["deceased"], "The deceased date cannot be before the birth date.")
	}
	return a
}

// parseDate returns (nil, true) for an empty field.
func parseDate(s, field string, errs map[string][]string) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		errs[field] = append(errs[field], "Use the format yyyy-mm-dd.")
		return nil, false
	}
	return &t, true
}
