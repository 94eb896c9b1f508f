package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movieweb/models"
	"movieweb/services"
)

func editForm() map[string]string {
	return map[string]string{
		"title":       "The Dark Knight",
		"year":        "2008",
		"genre":       "Action, Crime",
		"stars":       "Christian Bale",
		"director":    "Christopher Nolan",
		"writer":      "Jonathan Nolan",
		"plot":        "Gotham.",
		"poster_link": "https://img/x_SX500.jpg",
		"imdb_rating": "9.0",
	}
}

func TestValidateUpdate(t *testing.T) {
	require.NoError(t, services.ValidateUpdate(editForm()))

	form := editForm()
	delete(form, "title")
	err := services.ValidateUpdate(form)
	require.Error(t, err)
	assert.Equal(t, "Title is required!", err.Error())

	form = editForm()
	form["budget"] = "185000000"
	err = services.ValidateUpdate(form)
	require.Error(t, err)
	assert.Equal(t, "Movie has no attribute called --budget--", err.Error())

	form = editForm()
	form["imdb_id"] = "tt0000001"
	err = services.ValidateUpdate(form)
	assert.True(t, services.IsValidation(err))
}

// A missing required key is reported before an unknown one, and the first
// missing key in field order wins.
func TestValidateUpdateReportsFirstMissingKey(t *testing.T) {
	form := editForm()
	delete(form, "plot")
	delete(form, "director")
	form["budget"] = "1"

	err := services.ValidateUpdate(form)
	require.Error(t, err)
	assert.Equal(t, "Director is required!", err.Error())
}

func TestParseMovieUpdate(t *testing.T) {
	upd, err := services.ParseMovieUpdate(editForm())
	require.NoError(t, err)

	movie := &models.Movie{ID: 3, IMDbID: "tt0468569", Title: "Old"}
	upd.Apply(movie)

	assert.Equal(t, int64(3), movie.ID)
	assert.Equal(t, "tt0468569", movie.IMDbID)
	assert.Equal(t, "The Dark Knight", movie.Title)
	assert.Equal(t, 2008, movie.Year)
	assert.Equal(t, []string{"Action", "Crime"}, movie.Genres)
	assert.InDelta(t, 9.0, movie.IMDbRating, 1e-9)
}

func TestParseMovieUpdateRejectsBadValues(t *testing.T) {
	for key, value := range map[string]string{
		"title":       "  ",
		"year":        "soon",
		"imdb_rating": "12",
	} {
		form := editForm()
		form[key] = value
		_, err := services.ParseMovieUpdate(form)
		var ve *services.ValidationError
		require.ErrorAs(t, err, &ve, key)
		assert.Equal(t, []string{key}, ve.Fields)
	}
}

func TestMovieFieldsRoundTrip(t *testing.T) {
	movie := &models.Movie{
		Title:      "Heat",
		Year:       1995,
		Genres:     []string{"Action", "Crime"},
		IMDbRating: 8.3,
	}
	upd, err := services.ParseMovieUpdate(services.MovieFields(movie))
	require.NoError(t, err)

	got := &models.Movie{}
	upd.Apply(got)
	assert.Equal(t, movie.Title, got.Title)
	assert.Equal(t, movie.Year, got.Year)
	assert.Equal(t, movie.Genres, got.Genres)
	assert.Equal(t, movie.IMDbRating, got.IMDbRating)
}
