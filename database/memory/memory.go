// Package memory implements services.Store in process memory. It enforces the
// same keys, checks and cascades as the PostgreSQL schema.
package memory

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"movieweb/models"
	"movieweb/services"
)

type state struct {
	movies  map[int64]models.Movie
	users   map[int64]models.User
	reviews map[int64]models.Review
	library map[models.LibraryEntry]struct{}

	nextMovieID  int64
	nextUserID   int64
	nextReviewID int64
}

func (s *state) clone() *state {
	c := *s
	c.movies = maps.Clone(s.movies)
	c.users = maps.Clone(s.users)
	c.reviews = maps.Clone(s.reviews)
	c.library = maps.Clone(s.library)
	return &c
}

// Store is an in-memory store. Transactions are serialized; a failed one is
// rolled back by restoring a snapshot taken when it began.
type Store struct {
	sync.RWMutex
	txMu sync.Mutex
	data *state
	now  func() time.Time
}

var _ services.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		data: &state{
			movies:  map[int64]models.Movie{},
			users:   map[int64]models.User{},
			reviews: map[int64]models.Review{},
			library: map[models.LibraryEntry]struct{}{},
		},
		now: time.Now,
	}
}

// WithTx runs fn with exclusive use of the store's transaction slot.
func (s *Store) WithTx(_ context.Context, fn func(tx services.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.RLock()
	snapshot := s.data.clone()
	s.RUnlock()

	if err := fn(&tx{Store: s}); err != nil {
		s.Lock()
		s.data = snapshot
		s.Unlock()
		return err
	}
	return nil
}

// tx is the store as seen from inside WithTx. Nested calls join the open
// transaction.
type tx struct {
	*Store
}

func (t *tx) WithTx(_ context.Context, fn func(tx services.Store) error) error {
	return fn(t)
}

func copyMovie(m models.Movie) *models.Movie {
	m.Genres = slices.Clone(m.Genres)
	return &m
}

func byTitle(a, b models.Movie) int {
	return cmp.Or(
		strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)),
		cmp.Compare(a.ID, b.ID),
	)
}

func checkMovie(m *models.Movie) error {
	if m.IMDbRating < 0 || m.IMDbRating > 10 {
		return models.ErrConstraint
	}
	return nil
}

func (s *Store) GetMovieByID(_ context.Context, id int64) (*models.Movie, error) {
	s.RLock()
	defer s.RUnlock()

	m, ok := s.data.movies[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return copyMovie(m), nil
}

func (s *Store) GetMovieByIMDbID(_ context.Context, imdbID string) (*models.Movie, error) {
	s.RLock()
	defer s.RUnlock()

	for _, m := range s.data.movies {
		if m.IMDbID == imdbID {
			return copyMovie(m), nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *Store) ListMovies(_ context.Context) ([]models.Movie, error) {
	s.RLock()
	defer s.RUnlock()

	movies := make([]models.Movie, 0, len(s.data.movies))
	for _, m := range s.data.movies {
		movies = append(movies, *copyMovie(m))
	}
	slices.SortFunc(movies, byTitle)
	return movies, nil
}

// InsertMovie assigns the ID and timestamps of m.
func (s *Store) InsertMovie(_ context.Context, m *models.Movie) error {
	if err := checkMovie(m); err != nil {
		return err
	}
	s.Lock()
	defer s.Unlock()

	for _, existing := range s.data.movies {
		if existing.IMDbID == m.IMDbID {
			return models.ErrConflict
		}
	}
	s.data.nextMovieID++
	now := s.now().UTC()
	m.ID = s.data.nextMovieID
	m.CreatedAt = now
	m.UpdatedAt = now
	s.data.movies[m.ID] = *copyMovie(*m)
	return nil
}

func (s *Store) UpdateMovie(_ context.Context, m *models.Movie) error {
	if err := checkMovie(m); err != nil {
		return err
	}
	s.Lock()
	defer s.Unlock()

	existing, ok := s.data.movies[m.ID]
	if !ok {
		return models.ErrNotFound
	}
	for id, other := range s.data.movies {
		if id != m.ID && other.IMDbID == m.IMDbID {
			return models.ErrConflict
		}
	}
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = s.now().UTC()
	s.data.movies[m.ID] = *copyMovie(*m)
	return nil
}

// DeleteMovie removes the movie with its reviews and library entries.
func (s *Store) DeleteMovie(_ context.Context, id int64) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.data.movies[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.data.movies, id)
	for rid, r := range s.data.reviews {
		if r.MovieID == id {
			delete(s.data.reviews, rid)
		}
	}
	for entry := range s.data.library {
		if entry.MovieID == id {
			delete(s.data.library, entry)
		}
	}
	return nil
}

func (s *Store) AttachMovie(_ context.Context, userID, movieID int64) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.data.users[userID]; !ok {
		return models.ErrNotFound
	}
	if _, ok := s.data.movies[movieID]; !ok {
		return models.ErrNotFound
	}
	s.data.library[models.LibraryEntry{UserID: userID, MovieID: movieID}] = struct{}{}
	return nil
}

func (s *Store) DetachMovie(_ context.Context, userID, movieID int64) error {
	s.Lock()
	defer s.Unlock()

	entry := models.LibraryEntry{UserID: userID, MovieID: movieID}
	if _, ok := s.data.library[entry]; !ok {
		return models.ErrNotFound
	}
	delete(s.data.library, entry)
	return nil
}

func (s *Store) LibraryMovies(_ context.Context, userID int64) ([]models.Movie, error) {
	s.RLock()
	defer s.RUnlock()

	var movies []models.Movie
	for entry := range s.data.library {
		if entry.UserID == userID {
			movies = append(movies, *copyMovie(s.data.movies[entry.MovieID]))
		}
	}
	slices.SortFunc(movies, byTitle)
	return movies, nil
}

func (s *Store) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	s.RLock()
	defer s.RUnlock()

	u, ok := s.data.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByName(_ context.Context, username string) (*models.User, error) {
	s.RLock()
	defer s.RUnlock()

	for _, u := range s.data.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *Store) InsertUser(_ context.Context, u *models.User) error {
	s.Lock()
	defer s.Unlock()

	for _, existing := range s.data.users {
		if existing.Username == u.Username {
			return models.ErrConflict
		}
	}
	s.data.nextUserID++
	u.ID = s.data.nextUserID
	u.CreatedAt = s.now().UTC()
	s.data.users[u.ID] = *u
	return nil
}

// DeleteUser removes the user with their reviews and library entries.
func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.data.users[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.data.users, id)
	for rid, r := range s.data.reviews {
		if r.UserID == id {
			delete(s.data.reviews, rid)
		}
	}
	for entry := range s.data.library {
		if entry.UserID == id {
			delete(s.data.library, entry)
		}
	}
	return nil
}

// review returns a copy of r with the author's name filled in. Callers hold
// the read lock.
func (s *Store) review(r models.Review) *models.Review {
	r.Username = s.data.users[r.UserID].Username
	if r.Text != nil {
		text := *r.Text
		r.Text = &text
	}
	if r.Updated != nil {
		updated := *r.Updated
		r.Updated = &updated
	}
	return &r
}

func (s *Store) GetReviewByID(_ context.Context, id int64) (*models.Review, error) {
	s.RLock()
	defer s.RUnlock()

	r, ok := s.data.reviews[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return s.review(r), nil
}

func (s *Store) GetReviewByUserAndMovie(_ context.Context, userID, movieID int64) (*models.Review, error) {
	s.RLock()
	defer s.RUnlock()

	for _, r := range s.data.reviews {
		if r.UserID == userID && r.MovieID == movieID {
			return s.review(r), nil
		}
	}
	return nil, models.ErrNotFound
}

// ListReviewsForMovie returns the reviews of a movie, oldest first.
func (s *Store) ListReviewsForMovie(_ context.Context, movieID int64) ([]models.Review, error) {
	s.RLock()
	defer s.RUnlock()

	var reviews []models.Review
	for _, r := range s.data.reviews {
		if r.MovieID == movieID {
			reviews = append(reviews, *s.review(r))
		}
	}
	slices.SortFunc(reviews, func(a, b models.Review) int {
		return cmp.Or(a.Created.Compare(b.Created), cmp.Compare(a.ID, b.ID))
	})
	return reviews, nil
}

func checkReview(r *models.Review) error {
	if r.Rating < models.MinReviewRating || r.Rating > models.MaxReviewRating {
		return models.ErrConstraint
	}
	return nil
}

func (s *Store) InsertReview(_ context.Context, r *models.Review) error {
	if err := checkReview(r); err != nil {
		return err
	}
	s.Lock()
	defer s.Unlock()

	if _, ok := s.data.users[r.UserID]; !ok {
		return models.ErrNotFound
	}
	if _, ok := s.data.movies[r.MovieID]; !ok {
		return models.ErrNotFound
	}
	for _, existing := range s.data.reviews {
		if existing.UserID == r.UserID && existing.MovieID == r.MovieID {
			return models.ErrConflict
		}
	}
	s.data.nextReviewID++
	r.ID = s.data.nextReviewID
	if r.Created.IsZero() {
		r.Created = s.now().UTC()
	}
	s.data.reviews[r.ID] = *s.review(*r)
	return nil
}

// UpdateReview writes text, rating and the updated stamp. Owner and movie
// are fixed at creation.
func (s *Store) UpdateReview(_ context.Context, r *models.Review) error {
	if err := checkReview(r); err != nil {
		return err
	}
	s.Lock()
	defer s.Unlock()

	existing, ok := s.data.reviews[r.ID]
	if !ok {
		return models.ErrNotFound
	}
	existing.Text = r.Text
	existing.Rating = r.Rating
	existing.Updated = r.Updated
	s.data.reviews[r.ID] = *s.review(existing)
	return nil
}

func (s *Store) DeleteReview(_ context.Context, id int64) error {
	s.Lock()
	defer s.Unlock()

	if _, ok := s.data.reviews[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.data.reviews, id)
	return nil
}
