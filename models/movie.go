package models

import (
	"slices"
	"time"
)

// Form keys of the movie attributes, as submitted by edit forms.
const (
	FieldID         = "id"
	FieldIMDbID     = "imdb_id"
	FieldTitle      = "title"
	FieldYear       = "year"
	FieldGenre      = "genre"
	FieldStars      = "stars"
	FieldDirector   = "director"
	FieldWriter     = "writer"
	FieldPlot       = "plot"
	FieldPosterLink = "poster_link"
	FieldIMDbRating = "imdb_rating"
)

// ExternalMovieFields are the attributes sourced from OMDb. A refresh
// overwrites exactly these, and an edit must submit all of them.
var ExternalMovieFields = []string{
	FieldTitle,
	FieldYear,
	FieldGenre,
	FieldStars,
	FieldDirector,
	FieldWriter,
	FieldPlot,
	FieldPosterLink,
	FieldIMDbRating,
}

// IdentityMovieFields are never written by refreshes or edits.
var IdentityMovieFields = []string{FieldID, FieldIMDbID}

type Movie struct {
	ID         int64     `json:"id"`
	IMDbID     string    `json:"imdb_id"`
	Title      string    `json:"title"`
	Year       int       `json:"year"`
	Genres     []string  `json:"genre"`
	Stars      string    `json:"stars"` // cast, comma separated as OMDb returns it
	Director   string    `json:"director"`
	Writer     string    `json:"writer"`
	Plot       string    `json:"plot"`
	PosterURL  string    `json:"poster_link"`
	IMDbRating float64   `json:"imdb_rating"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsMovieField reports whether key names a movie attribute.
func IsMovieField(key string) bool {
	return slices.Contains(ExternalMovieFields, key) || slices.Contains(IdentityMovieFields, key)
}

// CopyExternalFields overwrites every externally sourced field of dst with
// the value from src. Identity and timestamps are left alone.
func CopyExternalFields(dst, src *Movie) {
	dst.Title = src.Title
	dst.Year = src.Year
	dst.Genres = slices.Clone(src.Genres)
	dst.Stars = src.Stars
	dst.Director = src.Director
	dst.Writer = src.Writer
	dst.Plot = src.Plot
	dst.PosterURL = src.PosterURL
	dst.IMDbRating = src.IMDbRating
}

// LibraryEntry is the membership of a movie in a user's library.
type LibraryEntry struct {
	UserID  int64 `json:"user_id"`
	MovieID int64 `json:"movie_id"`
}
