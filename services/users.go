package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"movieweb/models"
)

const maxUsernameLength = 30

type UserService struct {
	store  Store
	cost   int
	logger *slog.Logger
}

// NewUserService returns a user service hashing with bcrypt.DefaultCost.
func NewUserService(store Store, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{store: store, cost: bcrypt.DefaultCost, logger: logger}
}

// WithCost returns a copy hashing with the given bcrypt cost.
func (s *UserService) WithCost(cost int) *UserService {
	c := *s
	c.cost = cost
	return &c
}

// CreateUser registers a user. The password is stored as a bcrypt hash only.
func (s *UserService) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.newUser(username, password)
	if err != nil {
		return nil, err
	}
	err = s.store.WithTx(ctx, func(tx Store) error {
		return insertUser(ctx, tx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User created", "user", user)
	return user, nil
}

// newUser validates the credentials and returns an unsaved user holding the
// password hash.
func (s *UserService) newUser(username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	switch {
	case username == "":
		return nil, validationf([]string{"username"}, "Username is required.")
	case utf8.RuneCountInString(username) > maxUsernameLength:
		return nil, validationf([]string{"username"}, "Username must be at most %d characters.", maxUsernameLength)
	case strings.TrimSpace(password) == "":
		return nil, validationf([]string{"password"}, "Password is required.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &models.User{Username: username, PasswordHash: string(hash)}, nil
}

func insertUser(ctx context.Context, tx Store, user *models.User) error {
	if err := tx.InsertUser(ctx, user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return fmt.Errorf("User %s is %w.", user.Username, ErrAlreadyRegistered)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByName returns ErrNotFound for unknown users.
func (s *UserService) GetUserByName(ctx context.Context, username string) (*models.User, error) {
	user, err := s.store.GetUserByName(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", username, err)
	}
	return user, nil
}

// CheckPassword reports whether password matches the user's stored hash.
func (s *UserService) CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// Authenticate returns the named user when password matches, and
// ErrIncorrectPassword otherwise.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.GetUserByName(ctx, username)
	if err != nil {
		return nil, err
	}
	if !s.CheckPassword(user, password) {
		s.logger.Warn("Rejected password", "username", user.Username)
		return nil, ErrIncorrectPassword
	}
	return user, nil
}

// DeleteUser deletes userID along with its reviews and library. Users may
// only delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, actor *models.User, userID int64) (*models.User, error) {
	var user *models.User
	err := s.store.WithTx(ctx, func(tx Store) error {
		u, err := tx.GetUserByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("user %d: %w", userID, err)
		}
		if actor == nil || u.ID != actor.ID {
			return ErrForbidden
		}
		if err := tx.DeleteUser(ctx, u.ID); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("User deleted", "user", user)
	return user, nil
}
