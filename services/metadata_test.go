package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movieweb/services"
	sharedhttp "movieweb/shared/http"
	"movieweb/shared/logger"
)

func newOMDbServer(t *testing.T, handler func(q url.Values) (int, any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status, body := handler(r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestOMDbClient(t *testing.T, baseURL string) *services.OMDbClient {
	t.Helper()
	httpClient := sharedhttp.NewClient(
		sharedhttp.WithSleeper(func(time.Duration) {}),
		sharedhttp.WithLogger(logger.Discard()),
	)
	client, err := services.NewOMDbClient("test-key", baseURL, httpClient)
	require.NoError(t, err)
	return client
}

func TestOMDbClientQueryParameters(t *testing.T) {
	var got url.Values
	srv := newOMDbServer(t, func(q url.Values) (int, any) {
		got = q
		return http.StatusOK, darkKnightPayload()
	})
	client := newTestOMDbClient(t, srv.URL)

	payload, err := client.FetchMovie(context.Background(), services.MovieQuery{Title: "The Dark Knight", Year: 2008})
	require.NoError(t, err)
	assert.Equal(t, "tt0468569", payload["imdbID"])
	assert.Equal(t, "The Dark Knight", got.Get("t"))
	assert.Equal(t, "2008", got.Get("y"))
	assert.Equal(t, "full", got.Get("plot"))
	assert.Equal(t, "test-key", got.Get("apikey"))
	assert.False(t, got.Has("i"))

	_, err = client.FetchMovie(context.Background(), services.MovieQuery{Title: "ignored", Year: 1990, IMDbID: "tt0468569"})
	require.NoError(t, err)
	assert.Equal(t, "tt0468569", got.Get("i"))
	assert.False(t, got.Has("t"), "imdb id replaces title")
	assert.False(t, got.Has("y"), "imdb id replaces year")
}

func TestOMDbClientRequiresQuery(t *testing.T) {
	client := newTestOMDbClient(t, "http://127.0.0.1:1/")
	_, err := client.FetchMovie(context.Background(), services.MovieQuery{Year: 2008})
	assert.True(t, services.IsValidation(err))
}

func TestOMDbClientRequiresAPIKey(t *testing.T) {
	_, err := services.NewOMDbClient(" ", "", nil)
	assert.Error(t, err)
}

func TestOMDbClientUpstreamFailure(t *testing.T) {
	calls := 0
	srv := newOMDbServer(t, func(url.Values) (int, any) {
		calls++
		return http.StatusServiceUnavailable, map[string]string{"Error": "busy"}
	})
	client := newTestOMDbClient(t, srv.URL)

	_, err := client.FetchMovie(context.Background(), services.MovieQuery{IMDbID: "tt0468569"})
	var statusErr *sharedhttp.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, 4, calls)
	assert.NotContains(t, err.Error(), "test-key")
}

// The "not found" answer of OMDb is a 200 that the normalizer rejects.
func TestOMDbClientNotFoundPayload(t *testing.T) {
	srv := newOMDbServer(t, func(url.Values) (int, any) {
		return http.StatusOK, map[string]string{"Response": "False", "Error": "Movie not found!"}
	})
	client := newTestOMDbClient(t, srv.URL)

	payload, err := client.FetchMovie(context.Background(), services.MovieQuery{Title: "Nope"})
	require.NoError(t, err)
	_, err = services.NormalizeMovie(payload)
	assert.True(t, services.IsValidation(err))
}
