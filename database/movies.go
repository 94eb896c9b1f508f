package database

import (
	"context"

	"github.com/jackc/pgx/v5"

	"movieweb/models"
)

const movieColumns = `id, imdb_id, title, year, genres, stars, director, writer, plot,
	poster_url, imdb_rating, created_at, updated_at`

func scanMovie(row pgx.Row) (*models.Movie, error) {
	var m models.Movie
	err := row.Scan(&m.ID, &m.IMDbID, &m.Title, &m.Year, &m.Genres, &m.Stars, &m.Director,
		&m.Writer, &m.Plot, &m.PosterURL, &m.IMDbRating, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &m, nil
}

func collectMovies(rows pgx.Rows) ([]models.Movie, error) {
	defer rows.Close()

	var movies []models.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, *m)
	}
	return movies, mapError(rows.Err())
}

// genres keeps NULL out of the NOT NULL array column.
func genres(m *models.Movie) []string {
	if m.Genres == nil {
		return []string{}
	}
	return m.Genres
}

func (s *Store) GetMovieByID(ctx context.Context, id int64) (*models.Movie, error) {
	return scanMovie(s.db.QueryRow(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = $1`, id))
}

func (s *Store) GetMovieByIMDbID(ctx context.Context, imdbID string) (*models.Movie, error) {
	return scanMovie(s.db.QueryRow(ctx, `SELECT `+movieColumns+` FROM movies WHERE imdb_id = $1`, imdbID))
}

func (s *Store) ListMovies(ctx context.Context) ([]models.Movie, error) {
	rows, err := s.db.Query(ctx, `SELECT `+movieColumns+` FROM movies ORDER BY LOWER(title), id`)
	if err != nil {
		return nil, mapError(err)
	}
	return collectMovies(rows)
}

// InsertMovie fills in the ID and timestamps of m.
func (s *Store) InsertMovie(ctx context.Context, m *models.Movie) error {
	query := `
		INSERT INTO movies (imdb_id, title, year, genres, stars, director, writer, plot, poster_url, imdb_rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRow(ctx, query,
		m.IMDbID, m.Title, m.Year, genres(m), m.Stars, m.Director, m.Writer, m.Plot, m.PosterURL, m.IMDbRating,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	return mapError(err)
}

func (s *Store) UpdateMovie(ctx context.Context, m *models.Movie) error {
	query := `
		UPDATE movies
		SET imdb_id = $2, title = $3, year = $4, genres = $5, stars = $6, director = $7,
			writer = $8, plot = $9, poster_url = $10, imdb_rating = $11, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := s.db.QueryRow(ctx, query,
		m.ID, m.IMDbID, m.Title, m.Year, genres(m), m.Stars, m.Director, m.Writer, m.Plot, m.PosterURL, m.IMDbRating,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	return mapError(err)
}

// DeleteMovie cascades to reviews and library entries.
func (s *Store) DeleteMovie(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
