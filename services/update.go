package services

import (
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"movieweb/models"
	"movieweb/shared/format"
)

// ValidateUpdate checks a submitted edit form. Every externally sourced field
// must be present, and every key must name a movie attribute. Identity keys
// are attributes but are not editable.
func ValidateUpdate(fields map[string]string) error {
	for _, key := range models.ExternalMovieFields {
		if _, ok := fields[key]; !ok {
			return validationf([]string{key}, "%s is required!", capitalize(key))
		}
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	// deterministic error for maps with several bad keys
	sort.Strings(keys)
	for _, key := range keys {
		if !models.IsMovieField(key) {
			return validationf([]string{key}, "Movie has no attribute called --%s--", key)
		}
		if slices.Contains(models.IdentityMovieFields, key) {
			return validationf([]string{key}, "Movie attribute --%s-- cannot be edited", key)
		}
	}
	return nil
}

// MovieUpdate is the allow-listed set of editable movie attributes.
type MovieUpdate struct {
	Title      string
	Year       int
	Genres     []string
	Stars      string
	Director   string
	Writer     string
	Plot       string
	PosterURL  string
	IMDbRating float64
}

// ParseMovieUpdate validates the form and converts it into a MovieUpdate.
func ParseMovieUpdate(fields map[string]string) (MovieUpdate, error) {
	if err := ValidateUpdate(fields); err != nil {
		return MovieUpdate{}, err
	}

	title := strings.TrimSpace(fields[models.FieldTitle])
	if title == "" {
		return MovieUpdate{}, validationf([]string{models.FieldTitle}, "Title is required!")
	}

	year, err := strconv.Atoi(strings.TrimSpace(fields[models.FieldYear]))
	if err != nil || year <= 0 {
		return MovieUpdate{}, validationf([]string{models.FieldYear}, "Year must be a positive number")
	}

	rating := 0.0
	if raw := strings.TrimSpace(fields[models.FieldIMDbRating]); raw != "" {
		rating, err = strconv.ParseFloat(raw, 64)
		if err != nil || rating < 0 || rating > 10 {
			return MovieUpdate{}, validationf([]string{models.FieldIMDbRating}, "Imdb_rating must be a number between 0 and 10")
		}
	}

	return MovieUpdate{
		Title:      title,
		Year:       year,
		Genres:     format.SplitList(fields[models.FieldGenre]),
		Stars:      strings.TrimSpace(fields[models.FieldStars]),
		Director:   strings.TrimSpace(fields[models.FieldDirector]),
		Writer:     strings.TrimSpace(fields[models.FieldWriter]),
		Plot:       strings.TrimSpace(fields[models.FieldPlot]),
		PosterURL:  strings.TrimSpace(fields[models.FieldPosterLink]),
		IMDbRating: rating,
	}, nil
}

// Apply writes the update onto m. ID and IMDbID are never touched.
func (u MovieUpdate) Apply(m *models.Movie) {
	models.CopyExternalFields(m, &models.Movie{
		Title:      u.Title,
		Year:       u.Year,
		Genres:     u.Genres,
		Stars:      u.Stars,
		Director:   u.Director,
		Writer:     u.Writer,
		Plot:       u.Plot,
		PosterURL:  u.PosterURL,
		IMDbRating: u.IMDbRating,
	})
}

// MovieFields renders m as an edit form, the inverse of ParseMovieUpdate.
func MovieFields(m *models.Movie) map[string]string {
	return map[string]string{
		models.FieldTitle:      m.Title,
		models.FieldYear:       strconv.Itoa(m.Year),
		models.FieldGenre:      strings.Join(m.Genres, ", "),
		models.FieldStars:      m.Stars,
		models.FieldDirector:   m.Director,
		models.FieldWriter:     m.Writer,
		models.FieldPlot:       m.Plot,
		models.FieldPosterLink: m.PosterURL,
		models.FieldIMDbRating: strconv.FormatFloat(m.IMDbRating, 'f', -1, 64),
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
