// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techyspine/server/internal/config"
	"github.com/techyspine/server/internal/handlers"
	"github.com/techyspine/server/internal/repository"
	"github.com/techyspine/server/internal/services/account"
	"github.com/techyspine/server/internal/services/email"
	"github.com/techyspine/server/internal/services/google"
	"github.com/techyspine/server/internal/testutil"
)

// newAuthHandlers wires real services against an in-memory database. The
// tokeninfo endpoint is a local test server answering with the given body.
func newAuthHandlers(t *testing.T, tokenInfoBody string) (*handlers.AuthHandlers, *repository.Repository, *echo.Echo) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(tokenInfoBody))
	}))
	t.Cleanup(srv.Close)

	verifier := google.NewVerifier(&config.GoogleConfig{ClientID: "client-1", TokenInfoURL: srv.URL})
	accounts := account.NewService(repo, email.NewLogSender(), verifier)
	return handlers.NewAuth(accounts, verifier, "http://localhost:8082"), repo, echo.New()
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRegister_Handler(t *testing.T) {
	h, repo, e := newAuthHandlers(t, `{}`)

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"username": "alice", "email": "alice@example.com", "password": "secret"}`))
	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Registration successful", body["message"])

	user, err := repo.GetUserByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestRegister_Handler_DuplicateEmail(t *testing.T) {
	h, repo, e := newAuthHandlers(t, `{}`)
	testutil.NewTestUser(t, repo, "alice", "alice@example.com")

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"username": "other", "email": "alice@example.com", "password": "secret"}`))
	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Email already exists", body["message"])
}

func TestRegister_Handler_DuplicateUsername(t *testing.T) {
	h, repo, e := newAuthHandlers(t, `{}`)
	testutil.NewTestUser(t, repo, "alice", "alice@example.com")

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"username": "alice", "email": "other@example.com", "password": "secret"}`))
	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Username already exists", decodeEnvelope(t, rec)["message"])
}

func TestRegister_Handler_MissingFields(t *testing.T) {
	h, _, e := newAuthHandlers(t, `{}`)

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"username": "alice"}`))
	require.NoError(t, h.Register(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin_Handler(t *testing.T) {
	h, repo, e := newAuthHandlers(t, `{}`)
	user := testutil.NewTestUser(t, repo, "alice", "alice@example.com")

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email": "alice@example.com", "password": "correct horse battery staple"}`))
	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "Login successful", body["message"])

	payload, isMap := body["user"].(map[string]any)
	require.True(t, isMap)
	assert.Equal(t, float64(user.ID), payload["id"])
	assert.Equal(t, "alice", payload["username"])
	assert.Equal(t, "alice@example.com", payload["email"])
	assert.Equal(t, "LOCAL", payload["provider"])
	assert.NotContains(t, payload, "passwordHash")
}

func TestLogin_Handler_WrongPassword(t *testing.T) {
	h, repo, e := newAuthHandlers(t, `{}`)
	testutil.NewTestUser(t, repo, "alice", "alice@example.com")

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email": "alice@example.com", "password": "wrong"}`))
	require.NoError(t, h.Login(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid email or password", decodeEnvelope(t, rec)["message"])
}

func TestForgotPassword_Handler(t *testing.T) {
	h, repo, e := newAuthHandlers(t, `{}`)
	testutil.NewTestUser(t, repo, "alice", "alice@example.com")

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/auth/forgot-password",
		strings.NewReader(`{"email": "alice@example.com"}`))
	require.NoError(t, h.ForgotPassword(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password reset link sent to your email", decodeEnvelope(t, rec)["message"])
}

func TestForgotPassword_Handler_UnknownEmail(t *testing.T) {
	h, _, e := newAuthHandlers(t, `{}`)

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/auth/forgot-password",
		strings.NewReader(`{"email": "nobody@example.com"}`))
	require.NoError(t, h.ForgotPassword(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email not found", decodeEnvelope(t, rec)["message"])
}

func TestResetPassword_Handler(t *testing.T) {
	h, repo, e := newAuthHandlers(t, `{}`)
	user := testutil.NewTestUser(t, repo, "alice", "alice@example.com")
	token := testutil.NewResetToken(t, repo, user.ID, time.Hour)

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/auth/reset-password",
		strings.NewReader(`{"token": "`+token.Token+`", "newPassword": "brand-new"}`))
	require.NoError(t, h.ResetPassword(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password reset successful", decodeEnvelope(t, rec)["message"])
}

func TestResetPassword_Handler_UnknownToken(t *testing.T) {
	h, _, e := newAuthHandlers(t, `{}`)

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/auth/reset-password",
		strings.NewReader(`{"token": "no-such-token", "newPassword": "brand-new"}`))
	require.NoError(t, h.ResetPassword(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid token", decodeEnvelope(t, rec)["message"])
}

func TestResetPassword_Handler_ExpiredToken(t *testing.T) {
	h, repo, e := newAuthHandlers(t, `{}`)
	user := testutil.NewTestUser(t, repo, "alice", "alice@example.com")
	token := testutil.NewResetToken(t, repo, user.ID, -time.Hour)

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/auth/reset-password",
		strings.NewReader(`{"token": "`+token.Token+`", "newPassword": "brand-new"}`))
	require.NoError(t, h.ResetPassword(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Token expired or invalid", decodeEnvelope(t, rec)["message"])
}

func TestGoogleSignIn_Handler(t *testing.T) {
	h, _, e := newAuthHandlers(t, `{
		"aud": "client-1",
		"sub": "1234567890",
		"email": "jane@example.com",
		"email_verified": "true",
		"name": "Jane Doe",
		"picture": "https://img.example.com/jane.png"
	}`)

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/auth/google-signin",
		strings.NewReader(`{"token": "valid-id-token"}`))
	require.NoError(t, h.GoogleSignIn(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "Google sign-in successful", body["message"])

	payload, isMap := body["user"].(map[string]any)
	require.True(t, isMap)
	assert.Equal(t, "JaneDoe", payload["username"])
	assert.Equal(t, "GOOGLE", payload["provider"])
}

func TestGoogleSignIn_Handler_MissingToken(t *testing.T) {
	h, _, e := newAuthHandlers(t, `{}`)

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/auth/google-signin",
		strings.NewReader(`{"token": "  "}`))
	require.NoError(t, h.GoogleSignIn(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Google ID token is required", decodeEnvelope(t, rec)["message"])
}

func TestGoogleSignIn_Handler_InvalidToken(t *testing.T) {
	h, _, e := newAuthHandlers(t, `{"error": "invalid_token", "error_description": "Invalid Value"}`)

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/auth/google-signin",
		strings.NewReader(`{"token": "bad-token"}`))
	require.NoError(t, h.GoogleSignIn(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeEnvelope(t, rec)
	message, isString := body["message"].(string)
	require.True(t, isString)
	assert.True(t, strings.HasPrefix(message, "Invalid Google token: "), "got %q", message)
}

func TestGoogleLogin_Handler(t *testing.T) {
	h, _, e := newAuthHandlers(t, `{}`)

	c, rec := testutil.NewEchoContext(e, http.MethodGet, "/api/auth/google", nil)
	require.NoError(t, h.GoogleLogin(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeEnvelope(t, rec)
	authURL, isString := body["authUrl"].(string)
	require.True(t, isString)
	assert.Contains(t, authURL, "accounts.google.com")
	assert.Contains(t, authURL, "client_id=client-1")
}

func TestLogout_Handler(t *testing.T) {
	h, _, e := newAuthHandlers(t, `{}`)

	c, rec := testutil.NewEchoContext(e, http.MethodPost, "/api/auth/logout", nil)
	require.NoError(t, h.Logout(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logout successful", decodeEnvelope(t, rec)["message"])
}
