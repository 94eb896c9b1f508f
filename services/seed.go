package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"movieweb/models"
	"movieweb/seed"
)

// SeedData is the demo data set: movies by imdb id, users, and reviews
// referencing both by their unique keys.
type SeedData struct {
	IMDbIDs []string     `yaml:"imdb_ids"`
	Users   []SeedUser   `yaml:"users"`
	Reviews []SeedReview `yaml:"reviews"`
}

type SeedUser struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type SeedReview struct {
	Username string     `yaml:"username"`
	IMDbID   string     `yaml:"imdb_id"`
	Text     string     `yaml:"text"`
	Rating   int        `yaml:"rating"`
	Created  time.Time  `yaml:"created"`
	Updated  *time.Time `yaml:"updated"`
}

// LoadSeedData reads seed data from path, or the embedded default when path
// is empty.
func LoadSeedData(path string) (*SeedData, error) {
	if path == "" {
		return ParseSeedData(seed.Default)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeedData(raw)
}

func ParseSeedData(raw []byte) (*SeedData, error) {
	var data SeedData
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	return &data, nil
}

// SeedReport counts what a population run created and skipped.
type SeedReport struct {
	MoviesCreated  int
	MoviesSkipped  int
	UsersCreated   int
	UsersSkipped   int
	ReviewsCreated int
	ReviewsSkipped int
}

// Seeder populates the store with seed data. Running it twice creates
// nothing new.
type Seeder struct {
	store   Store
	fetcher Fetcher
	users   *UserService
	logger  *slog.Logger
}

func NewSeeder(store Store, fetcher Fetcher, users *UserService, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{store: store, fetcher: fetcher, users: users, logger: logger}
}

// Populate stores the seed movies, users and reviews. Items that cannot be
// stored are logged and skipped; their errors are joined into the returned
// error once everything else is done.
func (s *Seeder) Populate(ctx context.Context, data *SeedData) (SeedReport, error) {
	var (
		report SeedReport
		errs   []error
	)

	movies := make([]*models.Movie, 0, len(data.IMDbIDs))
	var fresh []*models.Movie
	for _, imdbID := range data.IMDbIDs {
		movie, created, err := s.seedMovie(ctx, imdbID)
		if err != nil {
			s.logger.Warn("Skipping seed movie", "imdb_id", imdbID, "error", err)
			errs = append(errs, fmt.Errorf("movie %s: %w", imdbID, err))
			continue
		}
		if created {
			report.MoviesCreated++
			fresh = append(fresh, movie)
		} else {
			report.MoviesSkipped++
		}
		movies = append(movies, movie)
	}

	for _, su := range data.Users {
		created, err := s.seedUser(ctx, su, movies, fresh)
		if err != nil {
			s.logger.Warn("Skipping seed user", "username", su.Username, "error", err)
			errs = append(errs, fmt.Errorf("user %s: %w", su.Username, err))
			continue
		}
		if created {
			report.UsersCreated++
		} else {
			report.UsersSkipped++
		}
	}

	for _, sr := range data.Reviews {
		created, err := s.seedReview(ctx, sr)
		if err != nil {
			s.logger.Warn("Skipping seed review",
				"username", sr.Username,
				"imdb_id", sr.IMDbID,
				"error", err)
			errs = append(errs, fmt.Errorf("review by %s of %s: %w", sr.Username, sr.IMDbID, err))
			continue
		}
		if created {
			report.ReviewsCreated++
		} else {
			report.ReviewsSkipped++
		}
	}

	s.logger.Info("Seed data populated",
		"movies_created", report.MoviesCreated,
		"users_created", report.UsersCreated,
		"reviews_created", report.ReviewsCreated)
	return report, errors.Join(errs...)
}

// seedUser creates a seed user with every seed movie in its library, in one
// transaction. An existing user gets the movies created by this run, so a
// run that failed halfway is completed by the next one.
func (s *Seeder) seedUser(ctx context.Context, su SeedUser, movies, fresh []*models.Movie) (bool, error) {
	existing, err := s.store.GetUserByName(ctx, strings.TrimSpace(su.Username))
	switch {
	case err == nil:
		return false, s.attach(ctx, s.store, existing, fresh)
	case !errors.Is(err, models.ErrNotFound):
		return false, fmt.Errorf("failed to look up user: %w", err)
	}

	user, err := s.users.newUser(su.Username, su.Password)
	if err != nil {
		return false, err
	}
	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}
		return s.attach(ctx, tx, user, movies)
	})
	if err != nil {
		return false, err
	}
	s.logger.Info("Seed user created", "user", user, "movies", len(movies))
	return true, nil
}

func (s *Seeder) attach(ctx context.Context, store Store, user *models.User, movies []*models.Movie) error {
	if len(movies) == 0 {
		return nil
	}
	return store.WithTx(ctx, func(tx Store) error {
		for _, m := range movies {
			if err := tx.AttachMovie(ctx, user.ID, m.ID); err != nil {
				return fmt.Errorf("failed to attach %s: %w", m.IMDbID, err)
			}
		}
		return nil
	})
}

// seedMovie returns the stored movie for imdbID, fetching and inserting it
// when absent. Stored movies are never re-fetched.
func (s *Seeder) seedMovie(ctx context.Context, imdbID string) (*models.Movie, bool, error) {
	if m, err := s.store.GetMovieByIMDbID(ctx, imdbID); err == nil {
		return m, false, nil
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, false, err
	}

	payload, err := s.fetcher.FetchMovie(ctx, MovieQuery{IMDbID: imdbID})
	if err != nil {
		return nil, false, err
	}
	draft, err := NormalizeMovie(payload)
	if err != nil {
		return nil, false, err
	}

	err = s.store.WithTx(ctx, func(tx Store) error {
		return tx.InsertMovie(ctx, draft)
	})
	if errors.Is(err, models.ErrConflict) {
		// inserted concurrently, or the payload resolved to another stored id
		s.logger.Info("Movie already exists, skipping", "imdb_id", draft.IMDbID)
		m, err := s.store.GetMovieByIMDbID(ctx, draft.IMDbID)
		return m, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return draft, true, nil
}

func (s *Seeder) seedReview(ctx context.Context, sr SeedReview) (bool, error) {
	if err := validateRating(sr.Rating); err != nil {
		return false, err
	}
	user, err := s.store.GetUserByName(ctx, sr.Username)
	if err != nil {
		return false, fmt.Errorf("user: %w", err)
	}
	movie, err := s.store.GetMovieByIMDbID(ctx, sr.IMDbID)
	if err != nil {
		return false, fmt.Errorf("movie: %w", err)
	}

	if _, err := s.store.GetReviewByUserAndMovie(ctx, user.ID, movie.ID); err == nil {
		return false, nil
	} else if !errors.Is(err, models.ErrNotFound) {
		return false, err
	}

	created := sr.Created
	if created.IsZero() {
		created = time.Now()
	}
	review := &models.Review{
		UserID:   user.ID,
		MovieID:  movie.ID,
		Username: user.Username,
		Text:     optionalText(sr.Text),
		Rating:   sr.Rating,
		Created:  created.UTC(),
		Updated:  sr.Updated,
	}
	err = s.store.WithTx(ctx, func(tx Store) error {
		return tx.InsertReview(ctx, review)
	})
	if errors.Is(err, models.ErrConflict) {
		return false, nil
	}
	return err == nil, err
}
