package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movieweb/models"
	"movieweb/services"
)

func seedStore(t *testing.T) (*Store, *models.User, *models.Movie) {
	t.Helper()
	ctx := context.Background()
	s := New()

	user := &models.User{Username: "alice", PasswordHash: "hash"}
	require.NoError(t, s.InsertUser(ctx, user))
	movie := &models.Movie{IMDbID: "tt0468569", Title: "The Dark Knight", Year: 2008, Genres: []string{"Action"}}
	require.NoError(t, s.InsertMovie(ctx, movie))
	return s, user, movie
}

func TestUniqueKeys(t *testing.T) {
	ctx := context.Background()
	s, user, movie := seedStore(t)

	err := s.InsertMovie(ctx, &models.Movie{IMDbID: movie.IMDbID, Title: "Copy"})
	assert.ErrorIs(t, err, models.ErrConflict)

	err = s.InsertUser(ctx, &models.User{Username: user.Username})
	assert.ErrorIs(t, err, models.ErrConflict)

	require.NoError(t, s.InsertReview(ctx, &models.Review{UserID: user.ID, MovieID: movie.ID, Rating: 8}))
	err = s.InsertReview(ctx, &models.Review{UserID: user.ID, MovieID: movie.ID, Rating: 5})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestChecks(t *testing.T) {
	ctx := context.Background()
	s, user, movie := seedStore(t)

	assert.ErrorIs(t, s.InsertReview(ctx, &models.Review{UserID: user.ID, MovieID: movie.ID, Rating: 0}), models.ErrConstraint)
	assert.ErrorIs(t, s.InsertReview(ctx, &models.Review{UserID: user.ID, MovieID: movie.ID, Rating: 11}), models.ErrConstraint)
	assert.ErrorIs(t, s.InsertMovie(ctx, &models.Movie{IMDbID: "tt1", Title: "x", IMDbRating: 10.5}), models.ErrConstraint)
	assert.ErrorIs(t, s.InsertReview(ctx, &models.Review{UserID: user.ID, MovieID: 999, Rating: 5}), models.ErrNotFound)
}

func TestAttachIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, user, movie := seedStore(t)

	require.NoError(t, s.AttachMovie(ctx, user.ID, movie.ID))
	require.NoError(t, s.AttachMovie(ctx, user.ID, movie.ID))

	movies, err := s.LibraryMovies(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, movies, 1)

	require.NoError(t, s.DetachMovie(ctx, user.ID, movie.ID))
	assert.ErrorIs(t, s.DetachMovie(ctx, user.ID, movie.ID), models.ErrNotFound)
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	s, user, movie := seedStore(t)
	bob := &models.User{Username: "bob"}
	require.NoError(t, s.InsertUser(ctx, bob))

	for _, u := range []*models.User{user, bob} {
		require.NoError(t, s.AttachMovie(ctx, u.ID, movie.ID))
		require.NoError(t, s.InsertReview(ctx, &models.Review{UserID: u.ID, MovieID: movie.ID, Rating: 7}))
	}

	require.NoError(t, s.DeleteUser(ctx, bob.ID))
	reviews, err := s.ListReviewsForMovie(ctx, movie.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, "alice", reviews[0].Username)

	require.NoError(t, s.DeleteMovie(ctx, movie.ID))
	reviews, err = s.ListReviewsForMovie(ctx, movie.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
	library, err := s.LibraryMovies(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, library)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s, user, _ := seedStore(t)
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx services.Store) error {
		require.NoError(t, tx.InsertMovie(ctx, &models.Movie{IMDbID: "tt0133093", Title: "The Matrix", Year: 1999}))
		// nested transactions join the outer one
		return tx.WithTx(ctx, func(inner services.Store) error {
			require.NoError(t, inner.DeleteUser(ctx, user.ID))
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	_, err = s.GetMovieByIMDbID(ctx, "tt0133093")
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = s.GetUserByID(ctx, user.ID)
	assert.NoError(t, err)
}

func TestReturnedMoviesAreCopies(t *testing.T) {
	ctx := context.Background()
	s, _, movie := seedStore(t)

	got, err := s.GetMovieByID(ctx, movie.ID)
	require.NoError(t, err)
	got.Genres[0] = "Changed"
	got.Title = "Changed"

	again, err := s.GetMovieByID(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, "The Dark Knight", again.Title)
	assert.Equal(t, []string{"Action"}, again.Genres)
}

func TestUpdateMovieKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s, _, movie := seedStore(t)
	created := movie.CreatedAt

	movie.Title = "Dark Knight"
	movie.CreatedAt = created.AddDate(-1, 0, 0)
	require.NoError(t, s.UpdateMovie(ctx, movie))

	got, err := s.GetMovieByID(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dark Knight", got.Title)
	assert.Equal(t, created, got.CreatedAt)

	assert.ErrorIs(t, s.UpdateMovie(ctx, &models.Movie{ID: 42}), models.ErrNotFound)
}

func TestListMoviesSortedByTitle(t *testing.T) {
	ctx := context.Background()
	s, _, _ := seedStore(t)
	require.NoError(t, s.InsertMovie(ctx, &models.Movie{IMDbID: "tt1375666", Title: "inception"}))
	require.NoError(t, s.InsertMovie(ctx, &models.Movie{IMDbID: "tt0133093", Title: "The Matrix"}))

	movies, err := s.ListMovies(ctx)
	require.NoError(t, err)
	var titles []string
	for _, m := range movies {
		titles = append(titles, m.Title)
	}
	assert.Equal(t, []string{"inception", "The Dark Knight", "The Matrix"}, titles)
}
