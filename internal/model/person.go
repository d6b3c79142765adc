package model

import (
	"time"

	"github.com/google/uuid"
)

// Person is an actor that can be linked to any number of movies.
type Person struct {
	ID        uuid.UUID  // actors.id
	Name      string     // actors.name
	LastName  string     // actors.last_name
	BirthDate *time.Time // actors.birth_date
	Deceased  *time.Time // actors.deceased
}

// FullName joins first and last name with a single space.
func (p Person) FullName() string {
	return p.Name + " " + p.LastName
}
