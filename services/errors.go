package services

import (
	"errors"
	"fmt"
	"strings"

	"movieweb/models"
)

var (
	// ErrNotFound is returned when a referenced movie, user or review is absent.
	ErrNotFound = models.ErrNotFound
	// ErrAlreadyInLibrary is the duplicate-prevention outcome of AddMovie.
	ErrAlreadyInLibrary = errors.New("title already in your library")
	// ErrAlreadyRegistered reports a uniqueness conflict on creation.
	ErrAlreadyRegistered = errors.New("already registered")
	// ErrAlreadyReviewed reports a second review of one movie by one user.
	ErrAlreadyReviewed = errors.New("movie already reviewed")
	// ErrForbidden is returned when a user acts on another user's data.
	ErrForbidden = errors.New("forbidden")
	// ErrIncorrectPassword is returned by Authenticate.
	ErrIncorrectPassword = errors.New("Incorrect password.")
)

// ValidationError describes malformed or incomplete input. It is always
// recoverable and carries a message meant for the user.
type ValidationError struct {
	Message string
	// Fields lists the offending field names, when known.
	Fields []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(fields []string, format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...), Fields: fields}
}

func missingFieldsError(missing []string, upstream string) *ValidationError {
	msg := "Missing required fields: " + strings.Join(missing, ", ")
	if upstream != "" {
		msg += " (omdb: " + upstream + ")"
	}
	return &ValidationError{Message: msg, Fields: missing}
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
