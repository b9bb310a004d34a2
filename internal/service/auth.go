package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Skotchmaster/trafine/internal/hash"
	"github.com/Skotchmaster/trafine/internal/logging"
	"github.com/Skotchmaster/trafine/internal/metrics"
	"github.com/Skotchmaster/trafine/internal/models"
	"github.com/Skotchmaster/trafine/internal/mykafka"
	"github.com/Skotchmaster/trafine/internal/repo"
	"github.com/Skotchmaster/trafine/internal/tokens"
)

// AuthService owns identities: registration, credential verification and
// login, which hands a verified username to the session issuer.
type AuthService struct {
	Repo      UserStore
	Tokens    *tokens.Issuer
	Publisher EventPublisher
	Metrics   *metrics.Metrics
	Cost      int

	dummyOnce sync.Once
	dummyHash string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}

func (h *AuthService) Register(ctx context.Context, username, password string) error {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	pwHash, err := hash.HashPassword(password, h.Cost)
	if errors.Is(err, hash.ErrPasswordTooLong) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Username:     username,
		PasswordHash: pwHash,
	}
	if err := h.Repo.CreateUserIfNotExists(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			l.Warn("register_error", "status", 409, "reason", "user already exist")
			return fmt.Errorf("%w: username %q", ErrConflict, username)
		}
		l.Error("register_error", "status", 500, "reason", "cannot store user", "error", err)
		return fmt.Errorf("create user: %w", err)
	}

	h.Metrics.IncrementUsersRegistered()
	publish(ctx, h.Publisher, mykafka.TopicUserEvents, username, map[string]any{
		"type":     "user_registered",
		"username": username,
	})
	return nil
}

// Verify never tells an unknown username apart from a wrong password: both
// pay for one bcrypt comparison and return ErrInvalidCredentials.
func (h *AuthService) Verify(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := h.Repo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			hash.CheckPassword(h.dummy(), password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (h *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := h.Verify(ctx, username, password)
	if err != nil {
		h.Metrics.ObserveLogin(false)
		if errors.Is(err, ErrInvalidCredentials) {
			l.Warn("login_failed", "status", 401, "reason", "invalid username or password")
			return nil, err
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	token, exp, err := h.Tokens.Issue(user.Username)
	if err != nil {
		h.Metrics.ObserveLogin(false)
		l.Error("login_failed", "status", 500, "reason", "cannot issue session", "error", err)
		return nil, fmt.Errorf("issue session: %w", err)
	}

	h.Metrics.ObserveLogin(true)
	return &LoginResult{Token: token, ExpiresAt: exp}, nil
}

func (h *AuthService) dummy() string {
	h.dummyOnce.Do(func() {
		// on failure the comparison degrades to a fast mismatch
		h.dummyHash, _ = hash.HashPassword("trafine-dummy-password", h.Cost)
	})
	return h.dummyHash
}
