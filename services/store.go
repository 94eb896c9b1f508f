package services

import (
	"context"

	"movieweb/models"
)

// MovieRepository persists movies. Lookups return models.ErrNotFound for
// missing rows; InsertMovie returns models.ErrConflict for a duplicate
// imdb id.
type MovieRepository interface {
	GetMovieByID(ctx context.Context, id int64) (*models.Movie, error)
	GetMovieByIMDbID(ctx context.Context, imdbID string) (*models.Movie, error)
	ListMovies(ctx context.Context) ([]models.Movie, error)
	InsertMovie(ctx context.Context, m *models.Movie) error
	UpdateMovie(ctx context.Context, m *models.Movie) error
	DeleteMovie(ctx context.Context, id int64) error
}

// LibraryRepository manages (user, movie) membership pairs. AttachMovie is
// idempotent.
type LibraryRepository interface {
	AttachMovie(ctx context.Context, userID, movieID int64) error
	DetachMovie(ctx context.Context, userID, movieID int64) error
	LibraryMovies(ctx context.Context, userID int64) ([]models.Movie, error)
}

type UserRepository interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByName(ctx context.Context, username string) (*models.User, error)
	InsertUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

type ReviewRepository interface {
	GetReviewByID(ctx context.Context, id int64) (*models.Review, error)
	GetReviewByUserAndMovie(ctx context.Context, userID, movieID int64) (*models.Review, error)
	ListReviewsForMovie(ctx context.Context, movieID int64) ([]models.Review, error)
	InsertReview(ctx context.Context, r *models.Review) error
	UpdateReview(ctx context.Context, r *models.Review) error
	DeleteReview(ctx context.Context, id int64) error
}

// Store is the persistence collaborator. WithTx runs fn inside one
// transaction: an error from fn rolls everything back.
type Store interface {
	MovieRepository
	LibraryRepository
	UserRepository
	ReviewRepository

	WithTx(ctx context.Context, fn func(tx Store) error) error
}
