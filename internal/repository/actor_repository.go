package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/rmdb/internal/model"
)

const actorColumns = "id, name, last_name, birth_date, deceased"

// ActorRepo encapsulates all queries touching actors.
type ActorRepo struct {
	db *sql.DB
}

func NewActorRepo(db *sql.DB) *ActorRepo {
	return &ActorRepo{db: db}
}

func scanPerson(s rowScanner) (model.Person, error) {
	var (
		p        model.Person
		birth    sql.NullTime
		deceased sql.NullTime
	)
	if err := s.Scan(&p.ID, &p.Name, &p.LastName, &birth, &deceased); err != nil {
		return model.Person{}, err
	}
	p.BirthDate = timePtr(birth)
	p.Deceased = timePtr(deceased)
	return p, nil
}

// List returns every actor ordered by last name, then first name.
func (r *ActorRepo) List(ctx context.Context) ([]model.Person, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+actorColumns+" FROM actors ORDER BY last_name, name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Person, 0)
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns ErrActorNotFound when the id is unknown.
func (r *ActorRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Person, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+actorColumns+" FROM actors WHERE id = ?", id)
	p, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActorNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts an actor, assigning a fresh UUID when p.ID is nil.
func (r *ActorRepo) Create(ctx context.Context, p *model.Person) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	const q = "INSERT INTO actors (id, name, last_name, birth_date, deceased) VALUES (?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, q, p.ID, p.Name, p.LastName, nullTime(p.BirthDate), nullTime(p.Deceased))
	return err
}

// Update overwrites every mutable column of an actor.
func (r *ActorRepo) Update(ctx context.Context, p model.Person) error {
	const q = "UPDATE actors SET name = ?, last_name = ?, birth_date = ?, deceased = ? WHERE id = ?"
	res, err := r.db.ExecContext(ctx, q, p.Name, p.LastName, nullTime(p.BirthDate), nullTime(p.Deceased), p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrActorNotFound
	}
	return nil
}

// Delete removes an actor and unlinks it from every movie.
func (r *ActorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM movie_actors WHERE actor_id = ?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM actors WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrActorNotFound
	}
	return tx.Commit()
}
