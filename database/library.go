package database

import (
	"context"

	"movieweb/models"
)

// AttachMovie is a no-op for pairs that already exist.
func (s *Store) AttachMovie(ctx context.Context, userID, movieID int64) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_movies (user_id, movie_id) VALUES ($1, $2)
		ON CONFLICT (user_id, movie_id) DO NOTHING
	`, userID, movieID)
	return mapError(err)
}

func (s *Store) DetachMovie(ctx context.Context, userID, movieID int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM user_movies WHERE user_id = $1 AND movie_id = $2`, userID, movieID)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) LibraryMovies(ctx context.Context, userID int64) ([]models.Movie, error) {
	rows, err := s.db.Query(ctx, `
		SELECT m.id, m.imdb_id, m.title, m.year, m.genres, m.stars, m.director, m.writer, m.plot,
			m.poster_url, m.imdb_rating, m.created_at, m.updated_at
		FROM movies m
		JOIN user_movies um ON um.movie_id = m.id
		WHERE um.user_id = $1
		ORDER BY LOWER(m.title), m.id
	`, userID)
	if err != nil {
		return nil, mapError(err)
	}
	return collectMovies(rows)
}
