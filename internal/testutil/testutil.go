// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/techyspine/server/internal/database"
	"github.com/techyspine/server/internal/models"
	"github.com/techyspine/server/internal/repository"
	"github.com/vinovest/sqlx"
	"golang.org/x/crypto/bcrypt"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	repo := repository.New(db)
	return db, repo
}

// NewTestUser creates a local test user with the given username and a
// password of "correct horse battery staple".
func NewTestUser(t *testing.T, repo *repository.Repository, username, email string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse battery staple"), bcrypt.DefaultCost)
	require.NoError(t, err)

	hashStr := string(hash)
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: &hashStr,
		Provider:     models.ProviderLocal,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

// NewGoogleUser creates a test user without a password hash.
func NewGoogleUser(t *testing.T, repo *repository.Repository, username, email string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    email,
		Provider: models.ProviderGoogle,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

// NewResetToken creates a reset token for a user expiring after the given
// duration (negative values produce an already-expired token).
func NewResetToken(t *testing.T, repo *repository.Repository, userID int64, validFor time.Duration) *models.PasswordResetToken {
	t.Helper()
	token := &models.PasswordResetToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(validFor),
	}
	require.NoError(t, repo.CreateResetToken(context.Background(), token))
	return token
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}
