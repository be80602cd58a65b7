// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package account implements the credential lifecycle: registration, local
// and Google sign-in, and the password reset flow. Every operation runs as
// a single store transaction so that read-decide-write sequences stay
// atomic under concurrent requests for the same account.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/techyspine/server/internal/models"
	"github.com/techyspine/server/internal/repository"
	"github.com/techyspine/server/internal/services/google"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotFound      = errors.New("email not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpiredOrUsed = errors.New("token expired or used")
	ErrEmailMissing       = errors.New("email not found in google token")
)

// dummyHash is used for constant-time login to prevent timing attacks
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

// Notifier delivers account mail. Implementations are best-effort: the
// service logs failures and never lets them fail the triggering operation.
type Notifier interface {
	SendWelcome(ctx context.Context, email, username string) error
	SendPasswordReset(ctx context.Context, email, username, token string) error
}

// TokenVerifier validates a Google ID token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*google.TokenInfo, error)
}

// Service reconciles incoming identity assertions against the user store.
type Service struct {
	repo     *repository.Repository
	notifier Notifier
	verifier TokenVerifier
}

// NewService creates a new account service.
func NewService(repo *repository.Repository, notifier Notifier, verifier TokenVerifier) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		verifier: verifier,
	}
}

// Register creates a LOCAL account with a hashed password and zeroed
// learning stats, then sends a best-effort welcome mail.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hash := string(passwordHash)

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: &hash,
		Provider:     models.ProviderLocal,
	}

	err = s.repo.InTx(ctx, func(r *repository.Repository) error {
		// Up-front checks give the friendlier error; the unique indexes
		// still catch the insert race and map to the same errors below.
		if exists, err := r.EmailExists(ctx, email); err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		} else if exists {
			return ErrDuplicateEmail
		}
		if exists, err := r.UsernameExists(ctx, username); err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		} else if exists {
			return ErrDuplicateUsername
		}
		return r.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, mapDuplicateErr(err)
	}

	slog.Info("register_success", "user_id", user.ID, "email", email)
	s.notify(ctx, "welcome", func() error {
		return s.notifier.SendWelcome(ctx, user.Email, user.Username)
	})

	return user, nil
}

// AuthenticateLocal verifies an email/password pair. Accounts without a
// password hash (Google-only) always fail, regardless of the input.
func (s *Service) AuthenticateLocal(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Constant-time: always perform bcrypt comparison to prevent timing attacks
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			slog.Warn("login_failed", "email", email, "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !verifyPassword(user.PasswordHash, password) {
		slog.Warn("login_failed", "email", email, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLogin = &now

	slog.Info("login_success", "user_id", user.ID, "email", email)
	return user, nil
}

// AuthenticateOAuth verifies a Google ID token and maps it onto an account:
// an existing account with the token's email is reused, otherwise a new
// GOOGLE account without a password is created under a derived username.
func (s *Service) AuthenticateOAuth(ctx context.Context, idToken string) (*models.User, error) {
	info, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if info.Email == "" {
		return nil, ErrEmailMissing
	}

	now := time.Now().UTC()
	var user *models.User

	err = s.repo.InTx(ctx, func(r *repository.Repository) error {
		existing, err := r.GetUserByEmail(ctx, info.Email)
		switch {
		case err == nil:
			// Reconciliation: reuse the account, whatever its provenance.
			if existing.ProfileImage == nil && info.Picture != "" {
				existing.ProfileImage = &info.Picture
			}
			existing.LastLogin = &now
			if err := r.UpdateUser(ctx, existing); err != nil {
				return fmt.Errorf("failed to update user: %w", err)
			}
			user = existing
			return nil

		case errors.Is(err, repository.ErrNotFound):
			username, err := deriveUsername(ctx, r, info.Name, info.Email)
			if err != nil {
				return err
			}
			created := &models.User{
				Username: username,
				Email:    info.Email,
				Provider: models.ProviderGoogle,
				// No password hash for OAuth accounts.
			}
			if info.Picture != "" {
				created.ProfileImage = &info.Picture
			}
			created.LastLogin = &now
			if err := r.CreateUser(ctx, created); err != nil {
				return err
			}
			user = created
			return nil

		default:
			return fmt.Errorf("failed to get user: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}

	slog.Info("google_signin_success", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// RequestPasswordReset issues a fresh single-use token for the account and
// sends a best-effort reset mail carrying the raw token value.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (*models.PasswordResetToken, error) {
	var (
		user  *models.User
		token *models.PasswordResetToken
	)

	err := s.repo.InTx(ctx, func(r *repository.Repository) error {
		var err error
		user, err = r.GetUserByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrEmailNotFound
			}
			return fmt.Errorf("failed to get user: %w", err)
		}

		now := time.Now().UTC()
		token = &models.PasswordResetToken{
			Token:     uuid.NewString(),
			UserID:    user.ID,
			ExpiresAt: now.Add(models.ResetTokenValidity),
			CreatedAt: now,
		}
		return r.CreateResetToken(ctx, token)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("password_reset_requested", "user_id", user.ID, "email", email)
	s.notify(ctx, "password_reset", func() error {
		return s.notifier.SendPasswordReset(ctx, user.Email, user.Username, token.Token)
	})

	return token, nil
}

// CompletePasswordReset redeems a token and stores the new password. A
// token that is unknown fails with ErrInvalidToken; one that is consumed
// or past expiry fails with ErrTokenExpiredOrUsed and leaves the password
// untouched.
func (s *Service) CompletePasswordReset(ctx context.Context, rawToken, newPassword string) error {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.repo.InTx(ctx, func(r *repository.Repository) error {
		token, err := r.GetResetToken(ctx, rawToken)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrInvalidToken
			}
			return fmt.Errorf("failed to get token: %w", err)
		}

		if !token.Valid(time.Now()) {
			return ErrTokenExpiredOrUsed
		}

		if err := r.UpdateUserPassword(ctx, token.UserID, string(passwordHash)); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		if err := r.MarkResetTokenUsed(ctx, token.ID); err != nil {
			return fmt.Errorf("failed to consume token: %w", err)
		}

		slog.Info("password_reset_completed", "user_id", token.UserID)
		return nil
	})
	return err
}

// verifyPassword compares a plaintext password against a stored hash. A
// nil or empty hash never matches; a dummy comparison keeps the timing
// profile identical to a real check.
func verifyPassword(hash *string, password string) bool {
	if hash == nil || *hash == "" {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*hash), []byte(password)) == nil
}

// mapDuplicateErr lifts store-level uniqueness violations into the
// service's error taxonomy so a lost insert race reads the same as an
// up-front duplicate check.
func mapDuplicateErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return ErrDuplicateEmail
	case errors.Is(err, repository.ErrDuplicateUsername):
		return ErrDuplicateUsername
	default:
		return err
	}
}

// notify runs a best-effort notification; failures are logged, never
// propagated.
func (s *Service) notify(ctx context.Context, kind string, send func() error) {
	if s.notifier == nil {
		return
	}
	if err := send(); err != nil {
		slog.Error("notification_failed", "kind", kind, "error", err)
	}
}
