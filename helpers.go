package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"movieweb/services"
	sharedhttp "movieweb/shared/http"
)

// describeError turns service errors into the message shown to the user.
func describeError(err error) string {
	var ve *services.ValidationError
	var statusErr *sharedhttp.StatusError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, services.ErrAlreadyInLibrary):
		return "Title already in your library"
	case errors.Is(err, services.ErrAlreadyReviewed):
		return "You already reviewed this movie, update your review instead"
	case errors.Is(err, services.ErrForbidden):
		return "You can only change your own data"
	case errors.Is(err, services.ErrNotFound):
		return "Not found: " + err.Error()
	case errors.As(err, &statusErr):
		return fmt.Sprintf("OMDb is unavailable (status %d), try again later", statusErr.StatusCode)
	default:
		return err.Error()
	}
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}

// parseAssignments parses repeated key=value flags.
func parseAssignments(values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", v)
		}
		out[key] = value
	}
	return out, nil
}

func formatRating(rating float64) string {
	if rating == 0 {
		return "N/A"
	}
	return strconv.FormatFloat(rating, 'f', 1, 64)
}

func formatYear(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}
