package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"movieweb/models"
	"movieweb/shared/format"
)

const (
	posterSizeToken  = "SX300"
	posterLargeToken = "SX500"
	// OMDb reports missing values as "N/A".
	notAvailable = "N/A"
)

// NormalizeMovie converts a raw OMDb payload into an unsaved movie draft.
// It fails with a *ValidationError for an empty payload, and lists every
// missing required field (title, year, imdb_id) at once.
func NormalizeMovie(payload map[string]any) (*models.Movie, error) {
	if len(payload) == 0 {
		return nil, validationf(nil, "OMDb response is empty!")
	}

	movie := &models.Movie{
		Title:     stringValue(payload, "Title"),
		Year:      parseYear(payload["Year"]),
		Genres:    format.SplitList(stringValue(payload, "Genre")),
		IMDbID:    stringValue(payload, "imdbID"),
		Stars:     stringValue(payload, "Actors"),
		Director:  stringValue(payload, "Director"),
		Writer:    stringValue(payload, "Writer"),
		Plot:      stringValue(payload, "Plot"),
		PosterURL: largerPoster(stringValue(payload, "Poster")),
	}

	var missing []string
	if movie.Title == "" {
		missing = append(missing, models.FieldTitle)
	}
	if movie.Year == 0 {
		missing = append(missing, models.FieldYear)
	}
	if movie.IMDbID == "" {
		missing = append(missing, models.FieldIMDbID)
	}
	if len(missing) > 0 {
		return nil, missingFieldsError(missing, upstreamError(payload))
	}

	rating, err := parseRating(payload["imdbRating"])
	if err != nil {
		return nil, err
	}
	movie.IMDbRating = rating

	return movie, nil
}

func stringValue(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return strings.TrimSpace(s)
}

// upstreamError extracts the message of a {"Response":"False"} payload.
func upstreamError(payload map[string]any) string {
	if !strings.EqualFold(stringValue(payload, "Response"), "false") {
		return ""
	}
	return stringValue(payload, "Error")
}

// parseYear accepts "2008", 2008 and series ranges such as "2005–2007".
// Anything unparsable counts as missing.
func parseYear(v any) int {
	switch year := v.(type) {
	case float64:
		return int(year)
	case json.Number:
		n, _ := year.Int64()
		return int(n)
	case string:
		year = strings.TrimSpace(year)
		end := 0
		for end < len(year) && end < 4 && year[end] >= '0' && year[end] <= '9' {
			end++
		}
		n, _ := strconv.Atoi(year[:end])
		return n
	default:
		return 0
	}
}

// parseRating maps the "N/A" sentinel (or an absent rating) to zero.
func parseRating(v any) (float64, error) {
	var rating float64
	switch r := v.(type) {
	case nil:
		return 0, nil
	case float64:
		rating = r
	case json.Number:
		f, err := r.Float64()
		if err != nil {
			return 0, validationf([]string{models.FieldIMDbRating}, "Invalid imdbRating %q", r.String())
		}
		rating = f
	case string:
		r = strings.TrimSpace(r)
		if r == "" || r == notAvailable {
			return 0, nil
		}
		f, err := strconv.ParseFloat(r, 64)
		if err != nil {
			return 0, validationf([]string{models.FieldIMDbRating}, "Invalid imdbRating %q", r)
		}
		rating = f
	default:
		return 0, validationf([]string{models.FieldIMDbRating}, "Invalid imdbRating %v", r)
	}
	if rating < 0 || rating > 10 {
		return 0, validationf([]string{models.FieldIMDbRating}, "imdbRating %s out of range 0-10", fmt.Sprint(rating))
	}
	return rating, nil
}

// largerPoster requests the 500px variant of an OMDb poster.
func largerPoster(poster string) string {
	if poster == "" {
		return ""
	}
	return strings.ReplaceAll(poster, posterSizeToken, posterLargeToken)
}
