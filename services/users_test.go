package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"movieweb/database/memory"
	"movieweb/models"
	"movieweb/services"
	"movieweb/shared/logger"
)

func newUserService() (*services.UserService, *memory.Store) {
	store := memory.New()
	return services.NewUserService(store, logger.Discard()).WithCost(bcrypt.MinCost), store
}

func TestCreateUserHashesPassword(t *testing.T) {
	ctx := context.Background()
	users, store := newUserService()

	user, err := users.CreateUser(ctx, "  carol ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "carol", user.Username)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
	assert.True(t, users.CheckPassword(user, "s3cret"))
	assert.False(t, users.CheckPassword(user, "wrong"))

	stored, err := store.GetUserByName(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, user.PasswordHash, stored.PasswordHash)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	users, _ := newUserService()
	created, err := users.CreateUser(ctx, "carol", "s3cret")
	require.NoError(t, err)

	user, err := users.Authenticate(ctx, "carol", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = users.Authenticate(ctx, "carol", "wrong")
	assert.ErrorIs(t, err, services.ErrIncorrectPassword)

	_, err = users.Authenticate(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	users, _ := newUserService()

	_, err := users.CreateUser(ctx, "carol", "one")
	require.NoError(t, err)
	_, err = users.CreateUser(ctx, "carol", "two")
	require.ErrorIs(t, err, services.ErrAlreadyRegistered)
	assert.Equal(t, "User carol is already registered.", err.Error())
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	users, _ := newUserService()

	for _, tc := range []struct{ username, password string }{
		{"", "pw"},
		{"dave", "  "},
		{"a-name-that-is-way-longer-than-thirty", "pw"},
	} {
		_, err := users.CreateUser(ctx, tc.username, tc.password)
		assert.True(t, services.IsValidation(err), "%q/%q", tc.username, tc.password)
	}
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	users, store := newUserService()
	carol, err := users.CreateUser(ctx, "carol", "pw")
	require.NoError(t, err)
	dave, err := users.CreateUser(ctx, "dave", "pw")
	require.NoError(t, err)

	movie := &models.Movie{IMDbID: "tt0133093", Title: "The Matrix", Year: 1999}
	require.NoError(t, store.InsertMovie(ctx, movie))
	require.NoError(t, store.AttachMovie(ctx, carol.ID, movie.ID))
	require.NoError(t, store.InsertReview(ctx, &models.Review{UserID: carol.ID, MovieID: movie.ID, Rating: 8}))

	_, err = users.DeleteUser(ctx, dave, carol.ID)
	require.ErrorIs(t, err, services.ErrForbidden)

	_, err = users.DeleteUser(ctx, carol, carol.ID)
	require.NoError(t, err)

	_, err = users.GetUserByName(ctx, "carol")
	assert.ErrorIs(t, err, services.ErrNotFound)
	reviews, err := store.ListReviewsForMovie(ctx, movie.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
	_, err = store.GetMovieByID(ctx, movie.ID)
	assert.NoError(t, err, "movies outlive their users")
}
