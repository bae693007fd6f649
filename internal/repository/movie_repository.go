package repository // repository holds data access logic for domain entities

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/cinema-booking/internal/model"
)

const movieCols = `id, title, description, duration_min, genre, age_restriction, poster_url, director, created_at, updated_at`

// MovieRepo provides persistence for movies.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo with the given DB handle.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

func scanMovie(row interface{ Scan(...any) error }, m *model.Movie) error {
	return row.Scan(&m.ID, &m.Title, &m.Description, &m.DurationMin, &m.Genre,
		&m.AgeRestriction, &m.PosterURL, &m.Director, &m.CreatedAt, &m.UpdatedAt)
}

// Create inserts a new movie and reads the row back so timestamps are
// populated on the returned struct.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	const q = `INSERT INTO movies (title, description, duration_min, genre, age_restriction, poster_url, director)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.Title, m.Description, m.DurationMin, m.Genre,
		m.AgeRestriction, m.PosterURL, m.Director)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	const sel = `SELECT ` + movieCols + ` FROM movies WHERE id = ?`
	return scanMovie(r.db.QueryRowContext(ctx, sel, m.ID), m)
}

// GetByID retrieves a movie by its ID.  Returns ErrMovieNotFound when
// no row matches.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	const q = `SELECT ` + movieCols + ` FROM movies WHERE id = ?`
	var m model.Movie
	if err := scanMovie(r.db.QueryRowContext(ctx, q, id), &m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, err
	}
	return &m, nil
}

// List returns all movies ordered by title.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	const q = `SELECT ` + movieCols + ` FROM movies ORDER BY title`
	return r.queryMovies(ctx, q)
}

// Search applies the optional filters with AND semantics: title is a
// case-insensitive substring match, genre and age restriction are
// exact.  Any subset of filters may be supplied.
func (r *MovieRepo) Search(ctx context.Context, title, genre string, ageRestriction *uint8) ([]model.Movie, error) {
	where := []string{}
	args := []any{}
	if title != "" {
		where = append(where, "LOWER(title) LIKE ?")
		args = append(args, "%"+strings.ToLower(title)+"%")
	}
	if genre != "" {
		where = append(where, "genre = ?")
		args = append(args, genre)
	}
	if ageRestriction != nil {
		where = append(where, "age_restriction = ?")
		args = append(args, *ageRestriction)
	}
	q := `SELECT ` + movieCols + ` FROM movies`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY title"
	return r.queryMovies(ctx, q, args...)
}

// NowPlaying returns distinct movies that have at least one upcoming session.
func (r *MovieRepo) NowPlaying(ctx context.Context) ([]model.Movie, error) {
	const q = `SELECT DISTINCT m.id, m.title, m.description, m.duration_min, m.genre,
	                  m.age_restriction, m.poster_url, m.director, m.created_at, m.updated_at
	           FROM movies m
	           JOIN sessions s ON s.movie_id = m.id
	           WHERE s.start_time > UTC_TIMESTAMP()
	           ORDER BY m.title`
	return r.queryMovies(ctx, q)
}

// Update rewrites all mutable fields of a movie.  Returns
// ErrMovieNotFound when the row does not exist.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	const q = `UPDATE movies
	           SET title = ?, description = ?, duration_min = ?, genre = ?,
	               age_restriction = ?, poster_url = ?, director = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, m.Title, m.Description, m.DurationMin, m.Genre,
		m.AgeRestriction, m.PosterURL, m.Director, m.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// distinguish missing row from a no-op update
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ?`, m.ID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrMovieNotFound
			}
			return err
		}
	}
	const sel = `SELECT ` + movieCols + ` FROM movies WHERE id = ?`
	return scanMovie(r.db.QueryRowContext(ctx, sel, m.ID), m)
}

// Delete removes a movie; its sessions cascade in the database.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMovieNotFound
	}
	return nil
}

func (r *MovieRepo) queryMovies(ctx context.Context, q string, args ...any) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Movie, 0)
	for rows.Next() {
		var m model.Movie
		if err := scanMovie(rows, &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
