package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/rmdb/internal/model"
)

func MovieToList(m model.Movie) MovieListDto {
	return MovieListDto{ID: m.ID, Title: m.Title, ReleaseDate: m.ReleaseDate, Score: m.Score}
}

func MovieToDetail(m model.Movie) MovieDetailDto {
	return MovieDetailDto{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		ReleaseDate: m.ReleaseDate,
		RunTime:     spanFrom(m.RunTime),
		Score:       m.Score,
		Color:       m.Color,
	}
}

// MovieToEdit seeds a JSON Patch target with the current state of a movie.
func MovieToEdit(m model.Movie) EditMovieDto {
	return EditMovieDto{
		Title:       m.Title,
		Description: m.Description,
		ReleaseDate: m.ReleaseDate,
		RunTime:     spanFrom(m.RunTime),
		Score:       m.Score,
		Color:       m.Color,
	}
}

func (d AddMovieDto) Model(id uuid.UUID) model.Movie {
	return model.Movie{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		ReleaseDate: d.ReleaseDate,
		RunTime:     durationFrom(d.RunTime),
		Score:       d.Score,
		Color:       d.Color,
	}
}

func (d EditMovieDto) Model(id uuid.UUID) model.Movie {
	return AddMovieDto(d).Model(id)
}

func ActorToList(p model.Person) ActorListDto {
	return ActorListDto{
		ID:        p.ID,
		FullName:  p.FullName(),
		Name:      p.Name,
		LastName:  p.LastName,
		BirthDate: p.BirthDate,
		Deceased:  p.Deceased,
	}
}

func ActorToDetail(p model.Person) ActorDetailDto {
	return ActorDetailDto(ActorToList(p))
}

func (d AddActorDto) Model(id uuid.UUID) model.Person {
	return model.Person{
		ID:        id,
		Name:      d.Name,
		LastName:  d.LastName,
		BirthDate: d.BirthDate,
		Deceased:  d.Deceased,
	}
}

func (d EditActorDto) Model(id uuid.UUID) model.Person {
	return AddActorDto(d).Model(id)
}

func spanFrom(d *time.Duration) *TimeSpan {
	if d == nil {
		return nil
	}
	ts := TimeSpan(*d)
	return &ts
}

func durationFrom(ts *TimeSpan) *time.Duration {
	if ts == nil {
		return nil
	}
	d := ts.Duration()
	return &d
}
