package services_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"movieweb/database/memory"
	"movieweb/services"
	"movieweb/shared/logger"
)

const testSeedYAML = `
imdb_ids:
  - tt0468569
  - tt0133093
users:
  - username: alice
    password: pw-alice
  - username: bob
    password: pw-bob
reviews:
  - username: alice
    imdb_id: tt0468569
    text: Great.
    rating: 9
    created: 2024-03-02T19:30:00Z
  - username: bob
    imdb_id: tt0133093
    rating: 10
    created: 2024-02-11T17:45:00Z
    updated: 2024-02-12T08:00:00Z
`

func newSeeder(t *testing.T) (*services.Seeder, *memory.Store, *fakeFetcher) {
	t.Helper()
	store := memory.New()
	fetcher := newFakeFetcher(darkKnightPayload(), matrixPayload())
	users := services.NewUserService(store, logger.Discard()).WithCost(bcrypt.MinCost)
	return services.NewSeeder(store, fetcher, users, logger.Discard()), store, fetcher
}

func TestParseSeedData(t *testing.T) {
	data, err := services.ParseSeedData([]byte(testSeedYAML))
	require.NoError(t, err)
	assert.Equal(t, []string{"tt0468569", "tt0133093"}, data.IMDbIDs)
	require.Len(t, data.Users, 2)
	require.Len(t, data.Reviews, 2)
	assert.Nil(t, data.Reviews[0].Updated)
	require.NotNil(t, data.Reviews[1].Updated)
	assert.Equal(t, 2024, data.Reviews[1].Created.Year())

	_, err = services.ParseSeedData([]byte("imdb_ids: [tt1]\nmovies: []\n"))
	assert.Error(t, err, "unknown keys are rejected")
}

func TestLoadSeedData(t *testing.T) {
	embedded, err := services.LoadSeedData("")
	require.NoError(t, err)
	assert.NotEmpty(t, embedded.IMDbIDs)
	assert.NotEmpty(t, embedded.Users)

	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSeedYAML), 0o600))
	fromFile, err := services.LoadSeedData(path)
	require.NoError(t, err)
	assert.Len(t, fromFile.IMDbIDs, 2)

	_, err = services.LoadSeedData(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestPopulate(t *testing.T) {
	ctx := context.Background()
	seeder, store, _ := newSeeder(t)
	data, err := services.ParseSeedData([]byte(testSeedYAML))
	require.NoError(t, err)

	report, err := seeder.Populate(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, services.SeedReport{MoviesCreated: 2, UsersCreated: 2, ReviewsCreated: 2}, report)

	bob, err := store.GetUserByName(ctx, "bob")
	require.NoError(t, err)
	library, err := store.LibraryMovies(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, library, 2, "new users get every seed movie")

	matrix, err := store.GetMovieByIMDbID(ctx, "tt0133093")
	require.NoError(t, err)
	review, err := store.GetReviewByUserAndMovie(ctx, bob.ID, matrix.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, review.Rating)
	require.NotNil(t, review.Updated)
}

func TestPopulateTwiceCreatesNothing(t *testing.T) {
	ctx := context.Background()
	seeder, store, fetcher := newSeeder(t)
	data, err := services.ParseSeedData([]byte(testSeedYAML))
	require.NoError(t, err)

	_, err = seeder.Populate(ctx, data)
	require.NoError(t, err)
	calls := fetcher.calls

	report, err := seeder.Populate(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, services.SeedReport{MoviesSkipped: 2, UsersSkipped: 2, ReviewsSkipped: 2}, report)
	assert.Equal(t, calls, fetcher.calls, "stored movies are not fetched again")

	movies, err := store.ListMovies(ctx)
	require.NoError(t, err)
	assert.Len(t, movies, 2)
}

func TestPopulateReportsFailures(t *testing.T) {
	ctx := context.Background()
	seeder, store, _ := newSeeder(t)
	data, err := services.ParseSeedData([]byte(testSeedYAML))
	require.NoError(t, err)
	data.IMDbIDs = append(data.IMDbIDs, "tt9999999")
	data.Reviews = append(data.Reviews, services.SeedReview{Username: "nobody", IMDbID: "tt0468569", Rating: 5})

	report, err := seeder.Populate(ctx, data)
	require.Error(t, err)
	assert.True(t, services.IsValidation(err), "unknown movie surfaces as a normalization error")
	assert.True(t, errors.Is(err, services.ErrNotFound), "unknown user surfaces as not found")
	assert.Equal(t, 2, report.MoviesCreated)
	assert.Equal(t, 2, report.ReviewsCreated)

	alice, err := store.GetUserByName(ctx, "alice")
	require.NoError(t, err)
	library, err := store.LibraryMovies(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, library, 2)
}

// flakyAttachStore fails every AttachMovie while broken is set.
type flakyAttachStore struct {
	services.Store
	broken *bool
}

func (s flakyAttachStore) AttachMovie(ctx context.Context, userID, movieID int64) error {
	if *s.broken {
		return errors.New("connection reset")
	}
	return s.Store.AttachMovie(ctx, userID, movieID)
}

func (s flakyAttachStore) WithTx(ctx context.Context, fn func(tx services.Store) error) error {
	return s.Store.WithTx(ctx, func(tx services.Store) error {
		return fn(flakyAttachStore{Store: tx, broken: s.broken})
	})
}

func TestPopulateConvergesAfterAttachFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	broken := true
	flaky := flakyAttachStore{Store: store, broken: &broken}
	users := services.NewUserService(flaky, logger.Discard()).WithCost(bcrypt.MinCost)
	seeder := services.NewSeeder(flaky, newFakeFetcher(darkKnightPayload(), matrixPayload()), users, logger.Discard())
	data, err := services.ParseSeedData([]byte(testSeedYAML))
	require.NoError(t, err)

	report, err := seeder.Populate(ctx, data)
	require.Error(t, err)
	assert.ErrorContains(t, err, "user alice")
	assert.ErrorContains(t, err, "user bob")
	assert.Equal(t, 0, report.UsersCreated, "user and library are stored together")
	assert.Equal(t, 2, report.MoviesCreated)

	_, err = store.GetUserByName(ctx, "alice")
	assert.True(t, errors.Is(err, services.ErrNotFound))

	broken = false
	report, err = seeder.Populate(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, services.SeedReport{MoviesSkipped: 2, UsersCreated: 2, ReviewsCreated: 2}, report)

	for _, name := range []string{"alice", "bob"} {
		user, err := store.GetUserByName(ctx, name)
		require.NoError(t, err)
		library, err := store.LibraryMovies(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, library, 2, name)
	}
}

func TestPopulateAttachesLateMoviesToExistingUsers(t *testing.T) {
	ctx := context.Background()
	seeder, store, fetcher := newSeeder(t)
	data, err := services.ParseSeedData([]byte(testSeedYAML))
	require.NoError(t, err)

	fetcher.err = errors.New("omdb down")
	report, err := seeder.Populate(ctx, data)
	require.Error(t, err)
	assert.Equal(t, 2, report.UsersCreated)

	fetcher.err = nil
	report, err = seeder.Populate(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, 2, report.MoviesCreated)
	assert.Equal(t, 2, report.UsersSkipped)
	assert.Equal(t, 2, report.ReviewsCreated)

	alice, err := store.GetUserByName(ctx, "alice")
	require.NoError(t, err)
	library, err := store.LibraryMovies(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, library, 2)
}
