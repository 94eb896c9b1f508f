package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	sharedhttp "movieweb/shared/http"
)

// DefaultOMDbBaseURL is the public OMDb endpoint.
const DefaultOMDbBaseURL = "http://www.omdbapi.com/"

// MovieQuery identifies a movie to fetch. IMDbID takes precedence over
// Title and Year.
type MovieQuery struct {
	Title  string
	Year   int
	IMDbID string
}

func (q MovieQuery) normalized() MovieQuery {
	q.Title = strings.TrimSpace(q.Title)
	q.IMDbID = strings.TrimSpace(q.IMDbID)
	return q
}

func (q MovieQuery) validate() error {
	if q.Title == "" && q.IMDbID == "" {
		return validationf([]string{"title", "imdb_id"}, "Title or IMDb id is required!")
	}
	if q.Year < 0 {
		return validationf([]string{"year"}, "Year must be a positive number")
	}
	return nil
}

// Fetcher retrieves a raw metadata payload for a query.
type Fetcher interface {
	FetchMovie(ctx context.Context, q MovieQuery) (map[string]any, error)
}

// OMDbClient fetches movie metadata from the OMDb API.
type OMDbClient struct {
	apiKey  string
	baseURL string
	http    *sharedhttp.Client
}

// NewOMDbClient returns a client for baseURL (DefaultOMDbBaseURL when empty).
func NewOMDbClient(apiKey, baseURL string, client *sharedhttp.Client) (*OMDbClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("OMDB_API_KEY is not set")
	}
	if baseURL == "" {
		baseURL = DefaultOMDbBaseURL
	}
	if client == nil {
		client = sharedhttp.NewClient()
	}
	return &OMDbClient{apiKey: apiKey, baseURL: baseURL, http: client}, nil
}

// FetchMovie looks a movie up by imdb id, or by title and optional year.
func (c *OMDbClient) FetchMovie(ctx context.Context, q MovieQuery) (map[string]any, error) {
	q = q.normalized()
	if err := q.validate(); err != nil {
		return nil, err
	}

	params := map[string]string{
		"apikey": c.apiKey,
		"plot":   "full",
	}
	if q.IMDbID != "" {
		params["i"] = q.IMDbID
	} else {
		params["t"] = q.Title
		if q.Year > 0 {
			params["y"] = strconv.Itoa(q.Year)
		}
	}

	var payload map[string]any
	if err := c.http.GetJSON(ctx, sharedhttp.BuildQueryURL(c.baseURL, params), &payload); err != nil {
		return nil, fmt.Errorf("omdb lookup: %w", err)
	}
	return payload, nil
}
