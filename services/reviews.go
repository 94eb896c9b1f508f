package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"movieweb/models"
)

type ReviewService struct {
	store  Store
	now    func() time.Time
	logger *slog.Logger
}

func NewReviewService(store Store, logger *slog.Logger) *ReviewService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewService{store: store, now: time.Now, logger: logger}
}

// WithClock returns a copy stamping reviews with now.
func (s *ReviewService) WithClock(now func() time.Time) *ReviewService {
	c := *s
	c.now = now
	return &c
}

// ReviewInput is a new review. Text is optional.
type ReviewInput struct {
	Text   string
	Rating int
}

// ReviewUpdate lists the editable review attributes. Nil fields are kept.
type ReviewUpdate struct {
	Text   *string
	Rating *int
}

func validateRating(rating int) error {
	if rating < models.MinReviewRating || rating > models.MaxReviewRating {
		return validationf([]string{"rating"}, "Rating must be between %d and %d",
			models.MinReviewRating, models.MaxReviewRating)
	}
	return nil
}

func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// AddReview stores the user's review of a movie. A user reviews a movie once.
func (s *ReviewService) AddReview(ctx context.Context, user *models.User, movieID int64, in ReviewInput) (*models.Review, error) {
	if err := validateRating(in.Rating); err != nil {
		return nil, err
	}

	review := &models.Review{
		UserID:   user.ID,
		MovieID:  movieID,
		Username: user.Username,
		Text:     optionalText(in.Text),
		Rating:   in.Rating,
		Created:  s.now().UTC(),
	}
	err := s.store.WithTx(ctx, func(tx Store) error {
		if _, err := tx.GetMovieByID(ctx, movieID); err != nil {
			return fmt.Errorf("movie %d: %w", movieID, err)
		}
		if err := tx.InsertReview(ctx, review); err != nil {
			switch {
			case errors.Is(err, models.ErrConflict):
				return ErrAlreadyReviewed
			case errors.Is(err, models.ErrConstraint):
				return validateRating(review.Rating)
			}
			return fmt.Errorf("failed to insert review: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Review created", "user", user.Username, "movie_id", movieID, "review_id", review.ID)
	return review, nil
}

// UpdateReview edits the user's own review and stamps it as updated.
func (s *ReviewService) UpdateReview(ctx context.Context, user *models.User, reviewID int64, upd ReviewUpdate) (*models.Review, error) {
	if upd.Rating != nil {
		if err := validateRating(*upd.Rating); err != nil {
			return nil, err
		}
	}

	var review *models.Review
	err := s.store.WithTx(ctx, func(tx Store) error {
		r, err := s.ownedReview(ctx, tx, user, reviewID)
		if err != nil {
			return err
		}
		if upd.Text != nil {
			r.Text = optionalText(*upd.Text)
		}
		if upd.Rating != nil {
			r.Rating = *upd.Rating
		}
		now := s.now().UTC()
		r.Updated = &now
		if err := tx.UpdateReview(ctx, r); err != nil {
			return fmt.Errorf("failed to update review: %w", err)
		}
		review = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Review updated", "user", user.Username, "review_id", reviewID)
	return review, nil
}

// DeleteReview removes the user's own review.
func (s *ReviewService) DeleteReview(ctx context.Context, user *models.User, reviewID int64) (*models.Review, error) {
	var review *models.Review
	err := s.store.WithTx(ctx, func(tx Store) error {
		r, err := s.ownedReview(ctx, tx, user, reviewID)
		if err != nil {
			return err
		}
		if err := tx.DeleteReview(ctx, reviewID); err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}
		review = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Review deleted", "user", user.Username, "review_id", reviewID)
	return review, nil
}

// ReviewsForMovie lists every review of a movie, oldest first.
func (s *ReviewService) ReviewsForMovie(ctx context.Context, movieID int64) ([]models.Review, error) {
	if _, err := s.store.GetMovieByID(ctx, movieID); err != nil {
		return nil, fmt.Errorf("movie %d: %w", movieID, err)
	}
	reviews, err := s.store.ListReviewsForMovie(ctx, movieID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (s *ReviewService) ownedReview(ctx context.Context, tx Store, user *models.User, reviewID int64) (*models.Review, error) {
	r, err := tx.GetReviewByID(ctx, reviewID)
	if err != nil {
		return nil, fmt.Errorf("review %d: %w", reviewID, err)
	}
	if r.UserID != user.ID {
		return nil, ErrForbidden
	}
	return r, nil
}
