package database

import (
	"context"

	"github.com/jackc/pgx/v5"

	"movieweb/models"
)

const reviewSelect = `
	SELECT r.id, r.user_id, r.movie_id, u.username, r.text, r.rating, r.created, r.updated
	FROM reviews r
	JOIN users u ON u.id = r.user_id
`

func scanReview(row pgx.Row) (*models.Review, error) {
	var r models.Review
	err := row.Scan(&r.ID, &r.UserID, &r.MovieID, &r.Username, &r.Text, &r.Rating, &r.Created, &r.Updated)
	if err != nil {
		return nil, mapError(err)
	}
	return &r, nil
}

func (s *Store) GetReviewByID(ctx context.Context, id int64) (*models.Review, error) {
	return scanReview(s.db.QueryRow(ctx, reviewSelect+` WHERE r.id = $1`, id))
}

func (s *Store) GetReviewByUserAndMovie(ctx context.Context, userID, movieID int64) (*models.Review, error) {
	return scanReview(s.db.QueryRow(ctx, reviewSelect+` WHERE r.user_id = $1 AND r.movie_id = $2`, userID, movieID))
}

// ListReviewsForMovie returns the reviews of a movie, oldest first.
func (s *Store) ListReviewsForMovie(ctx context.Context, movieID int64) ([]models.Review, error) {
	rows, err := s.db.Query(ctx, reviewSelect+` WHERE r.movie_id = $1 ORDER BY r.created, r.id`, movieID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *r)
	}
	return reviews, mapError(rows.Err())
}

// InsertReview stores r. A zero Created is stamped by the database.
func (s *Store) InsertReview(ctx context.Context, r *models.Review) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO reviews (user_id, movie_id, text, rating, created, updated)
		VALUES ($1, $2, $3, $4, COALESCE($5, CURRENT_TIMESTAMP), $6)
		RETURNING id, created
	`, r.UserID, r.MovieID, r.Text, r.Rating, nullTime(r), r.Updated).Scan(&r.ID, &r.Created)
	return mapError(err)
}

// UpdateReview writes text, rating and the updated stamp.
func (s *Store) UpdateReview(ctx context.Context, r *models.Review) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE reviews SET text = $2, rating = $3, updated = $4 WHERE id = $1
	`, r.ID, r.Text, r.Rating, r.Updated)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteReview(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func nullTime(r *models.Review) any {
	if r.Created.IsZero() {
		return nil
	}
	return r.Created
}
