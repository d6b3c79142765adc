// Package model holds the catalog entities as the web client sees them.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/rmdb/internal/dto"
)

type Movie struct {
	ID          uuid.UUID     `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description,omitempty"`
	ReleaseDate *time.Time    `json:"releaseDate,omitempty"`
	RunTime     *dto.TimeSpan `json:"runTime,omitempty"`
	Score       float64       `json:"score"`
	Color       bool          `json:"color"`
	Actors      []Actor       `json:"actors,omitempty"`
}

type Actor struct {
	ID        uuid.UUID  `json:"id"`
	FullName  string     `json:"fullName,omitempty"`
	Name      string     `json:"name"`
	LastName  string     `json:"lastName"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	Deceased  *time.Time `json:"deceased,omitempty"`
}

// DisplayName falls back to "Name LastName" when the API did not send fullName.
func (a Actor) DisplayName() string {
	if a.FullName != "" {
		return a.FullName
	}
	if a.LastName == "" {
		return a.Name
	}
	return a.Name + " " + a.LastName
}
