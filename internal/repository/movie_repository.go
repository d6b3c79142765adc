package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/rmdb/internal/model"
)

const movieColumns = "id, title, description, release_date, run_time_seconds, score, color"

// MovieRepo encapsulates all queries touching movies and their cast.
type MovieRepo struct {
	db *sql.DB
}

func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

func scanMovie(s rowScanner) (model.Movie, error) {
	var (
		m       model.Movie
		desc    sql.NullString
		release sql.NullTime
		runTime sql.NullInt64
	)
	if err := s.Scan(&m.ID, &m.Title, &desc, &release, &runTime, &m.Score, &m.Color); err != nil {
		return model.Movie{}, err
	}
	m.Description = stringPtr(desc)
	m.ReleaseDate = timePtr(release)
	m.RunTime = durationPtr(runTime)
	return m, nil
}

// List returns every movie ordered by title.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+movieColumns+" FROM movies ORDER BY title, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns ErrMovieNotFound when the id is unknown.
func (r *MovieRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Movie, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+movieColumns+" FROM movies WHERE id = ?", id)
	m, err := scanMovie(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListActors returns the cast of a movie.  An unknown movie yields an
// empty slice; callers check existence with GetByID first.
func (r *MovieRepo) ListActors(ctx context.Context, movieID uuid.UUID) ([]model.Person, error) {
	const q = `SELECT a.id, a.name, a.last_name, a.birth_date, a.deceased
               FROM actors a
               JOIN movie_actors ma ON ma.actor_id = a.id
               WHERE ma.movie_id = ?
               ORDER BY a.last_name, a.name, a.id`
	rows, err := r.db.QueryContext(ctx, q, movieID)
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

// Create inserts a movie.  A nil ID is replaced by a fresh UUID so the
// caller always learns the identifier through m.ID.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	const q = `INSERT INTO movies (id, title, description, release_date, run_time_seconds, score, color)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		m.ID, m.Title, nullString(m.Description), nullTime(m.ReleaseDate), nullSeconds(m.RunTime), m.Score, m.Color,
	)
	return err
}

// Update overwrites every mutable column.  Returns ErrMovieNotFound when no
// row matched.
func (r *MovieRepo) Update(ctx context.Context, m model.Movie) error {
	const q = `UPDATE movies
               SET title = ?, description = ?, release_date = ?, run_time_seconds = ?, score = ?, color = ?
               WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		m.Title, nullString(m.Description), nullTime(m.ReleaseDate), nullSeconds(m.RunTime), m.Score, m.Color, m.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// Delete removes a movie together with its cast rows in one transaction.
func (r *MovieRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM movie_actors WHERE movie_id = ?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM movies WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovieNotFound
	}
	return tx.Commit()
}

// AddActor links an existing actor to an existing movie.  Both rows are
// looked up inside the same transaction as the insert; a missing movie wins
// over a missing actor, and an existing link yields ErrConflict.
func (r *MovieRepo) AddActor(ctx context.Context, movieID, actorID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if ok, err := existsTx(ctx, tx, "SELECT 1 FROM movies WHERE id = ?", movieID); err != nil {
		return err
	} else if !ok {
		return ErrMovieNotFound
	}
	if ok, err := existsTx(ctx, tx, "SELECT 1 FROM actors WHERE id = ?", actorID); err != nil {
		return err
	} else if !ok {
		return ErrActorNotFound
	}
	if ok, err := existsTx(ctx, tx,
		"SELECT 1 FROM movie_actors WHERE movie_id = ? AND actor_id = ?", movieID, actorID); err != nil {
		return err
	} else if ok {
		return ErrConflict
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO movie_actors (movie_id, actor_id) VALUES (?, ?)", movieID, actorID); err != nil {
		return err
	}
	return tx.Commit()
}

func existsTx(ctx context.Context, tx *sql.Tx, q string, args ...any) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, q, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
