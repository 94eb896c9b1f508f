package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"movieweb/models"
	"movieweb/shared/format"
)

// Reconciler maps fetched metadata onto local movie records and keeps user
// libraries in sync with them.
type Reconciler struct {
	store   Store
	fetcher Fetcher
	logger  *slog.Logger
}

func NewReconciler(store Store, fetcher Fetcher, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{store: store, fetcher: fetcher, logger: logger}
}

// withStore returns a copy of r bound to a transaction.
func (r *Reconciler) withStore(tx Store) *Reconciler {
	c := *r
	c.store = tx
	return &c
}

// CheckLibraryDuplicate rejects a query that names a movie the user already
// has: same imdb id, or same title (case-insensitive) and same year. A query
// without a year never matches by title.
func (r *Reconciler) CheckLibraryDuplicate(ctx context.Context, user *models.User, q MovieQuery) error {
	movies, err := r.store.LibraryMovies(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to load library: %w", err)
	}
	q = q.normalized()
	for _, m := range movies {
		if q.IMDbID != "" && strings.EqualFold(m.IMDbID, q.IMDbID) {
			return ErrAlreadyInLibrary
		}
		if q.Title != "" && q.Year > 0 && strings.EqualFold(m.Title, q.Title) && m.Year == q.Year {
			return ErrAlreadyInLibrary
		}
	}
	return nil
}

// CreateOrAttach reuses the stored movie with the draft's imdb id, or inserts
// the draft, then attaches the result to the user's library. Attaching an
// already attached movie is a no-op.
func (r *Reconciler) CreateOrAttach(ctx context.Context, draft *models.Movie, user *models.User) (*models.Movie, error) {
	movie, err := r.store.GetMovieByIMDbID(ctx, draft.IMDbID)
	switch {
	case err == nil:
		r.logger.Debug("Reusing stored movie", "imdb_id", movie.IMDbID, "movie_id", movie.ID)
	case errors.Is(err, models.ErrNotFound):
		if err := r.store.InsertMovie(ctx, draft); err != nil {
			if errors.Is(err, models.ErrConflict) {
				return nil, fmt.Errorf("movie %s is %w", draft.IMDbID, ErrAlreadyRegistered)
			}
			return nil, fmt.Errorf("failed to insert movie: %w", err)
		}
		movie = draft
		r.logger.Info("Movie created", "imdb_id", movie.IMDbID, "movie_id", movie.ID, "title", movie.Title)
	default:
		return nil, fmt.Errorf("failed to look up movie %s: %w", draft.IMDbID, err)
	}

	if err := r.store.AttachMovie(ctx, user.ID, movie.ID); err != nil {
		return nil, fmt.Errorf("failed to attach movie: %w", err)
	}
	return movie, nil
}

// Refresh overwrites every externally sourced field of existing with the
// draft's values and persists it. Reviews and library memberships are left
// alone.
func (r *Reconciler) Refresh(ctx context.Context, existing, draft *models.Movie) error {
	if draft.IMDbID != existing.IMDbID {
		return validationf([]string{models.FieldIMDbID},
			"Refreshed data is for %s, not %s", draft.IMDbID, existing.IMDbID)
	}
	models.CopyExternalFields(existing, draft)
	if err := r.store.UpdateMovie(ctx, existing); err != nil {
		return fmt.Errorf("failed to update movie: %w", err)
	}
	return nil
}

// AddMovie fetches the queried movie and puts it into the user's library.
// The fetch happens outside the transaction.
func (r *Reconciler) AddMovie(ctx context.Context, user *models.User, q MovieQuery) (*models.Movie, error) {
	q = q.normalized()
	if err := q.validate(); err != nil {
		return nil, err
	}
	if err := r.CheckLibraryDuplicate(ctx, user, q); err != nil {
		return nil, err
	}

	draft, err := r.fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	var movie *models.Movie
	err = r.store.WithTx(ctx, func(tx Store) error {
		rtx := r.withStore(tx)
		// the query may have been a bare title resolving to a movie the user has
		if err := rtx.CheckLibraryDuplicate(ctx, user, MovieQuery{IMDbID: draft.IMDbID}); err != nil {
			return err
		}
		m, err := rtx.CreateOrAttach(ctx, draft, user)
		if err != nil {
			return err
		}
		movie = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Movie added to library", "user", user.Username, "movie_id", movie.ID, "title", movie.Title)
	return movie, nil
}

// RefreshMovie re-fetches a stored movie by its imdb id and overwrites its
// externally sourced fields.
func (r *Reconciler) RefreshMovie(ctx context.Context, movieID int64) (*models.Movie, error) {
	existing, err := r.store.GetMovieByID(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("movie %d: %w", movieID, err)
	}

	draft, err := r.fetch(ctx, MovieQuery{IMDbID: existing.IMDbID})
	if err != nil {
		return nil, err
	}

	err = r.store.WithTx(ctx, func(tx Store) error {
		// reload so a concurrent edit is not resurrected by a stale copy
		current, err := tx.GetMovieByID(ctx, movieID)
		if err != nil {
			return fmt.Errorf("movie %d: %w", movieID, err)
		}
		existing = current
		return r.withStore(tx).Refresh(ctx, existing, draft)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Movie refreshed", "movie_id", existing.ID, "imdb_id", existing.IMDbID)
	return existing, nil
}

// UpdateMovie applies a validated edit form to a stored movie.
func (r *Reconciler) UpdateMovie(ctx context.Context, movieID int64, fields map[string]string) (*models.Movie, error) {
	update, err := ParseMovieUpdate(fields)
	if err != nil {
		return nil, err
	}

	var movie *models.Movie
	err = r.store.WithTx(ctx, func(tx Store) error {
		m, err := tx.GetMovieByID(ctx, movieID)
		if err != nil {
			return fmt.Errorf("movie %d: %w", movieID, err)
		}
		update.Apply(m)
		if err := tx.UpdateMovie(ctx, m); err != nil {
			return fmt.Errorf("failed to update movie: %w", err)
		}
		movie = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Movie updated", "movie_id", movie.ID)
	return movie, nil
}

// RemoveFromLibrary detaches a movie from the user's library. The movie and
// its reviews stay.
func (r *Reconciler) RemoveFromLibrary(ctx context.Context, user *models.User, movieID int64) (*models.Movie, error) {
	var movie *models.Movie
	err := r.store.WithTx(ctx, func(tx Store) error {
		m, err := tx.GetMovieByID(ctx, movieID)
		if err != nil {
			return fmt.Errorf("movie %d: %w", movieID, err)
		}
		if err := tx.DetachMovie(ctx, user.ID, movieID); err != nil {
			return fmt.Errorf("movie %d not in library of %s: %w", movieID, user.Username, err)
		}
		movie = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Movie removed from library", "user", user.Username, "movie_id", movieID)
	return movie, nil
}

// DeleteMovie removes a movie together with its reviews and memberships.
func (r *Reconciler) DeleteMovie(ctx context.Context, movieID int64) (*models.Movie, error) {
	var movie *models.Movie
	err := r.store.WithTx(ctx, func(tx Store) error {
		m, err := tx.GetMovieByID(ctx, movieID)
		if err != nil {
			return fmt.Errorf("movie %d: %w", movieID, err)
		}
		if err := tx.DeleteMovie(ctx, movieID); err != nil {
			return fmt.Errorf("failed to delete movie: %w", err)
		}
		movie = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Movie deleted", "movie_id", movieID, "imdb_id", movie.IMDbID)
	return movie, nil
}

// MovieDetails is the read model of the movie page.
type MovieDetails struct {
	Movie      *models.Movie
	UserReview *models.Review
	Stars      Stars
	Genres     []string
}

// MovieDetails loads a movie along with the user's own review, if any.
func (r *Reconciler) MovieDetails(ctx context.Context, user *models.User, movieID int64) (*MovieDetails, error) {
	movie, err := r.store.GetMovieByID(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("movie %d: %w", movieID, err)
	}

	details := &MovieDetails{
		Movie:  movie,
		Stars:  CalculateIMDbStars(movie.IMDbRating),
		Genres: movie.Genres,
	}
	if user != nil {
		review, err := r.store.GetReviewByUserAndMovie(ctx, user.ID, movieID)
		switch {
		case err == nil:
			details.UserReview = review
		case !errors.Is(err, models.ErrNotFound):
			return nil, fmt.Errorf("failed to load review: %w", err)
		}
	}
	return details, nil
}

// Library lists the movies in the user's library.
func (r *Reconciler) Library(ctx context.Context, user *models.User) ([]models.Movie, error) {
	movies, err := r.store.LibraryMovies(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load library: %w", err)
	}
	return movies, nil
}

// Movies lists every stored movie.
func (r *Reconciler) Movies(ctx context.Context) ([]models.Movie, error) {
	movies, err := r.store.ListMovies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	return movies, nil
}

func (r *Reconciler) fetch(ctx context.Context, q MovieQuery) (*models.Movie, error) {
	payload, err := r.fetcher.FetchMovie(ctx, q)
	if err != nil {
		return nil, err
	}
	draft, err := NormalizeMovie(payload)
	if err != nil {
		r.logger.Warn("Unusable metadata payload",
			"query", queryLabel(q),
			"error", err)
		return nil, err
	}
	return draft, nil
}

func queryLabel(q MovieQuery) string {
	if q.IMDbID != "" {
		return q.IMDbID
	}
	if q.Year > 0 {
		return fmt.Sprintf("%s (%d)", q.Title, q.Year)
	}
	return format.Preview(q.Title, 60)
}
