// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/techyspine/server/internal/services/account"
	"github.com/techyspine/server/internal/services/google"
)

// AuthHandlers contains handlers for authentication.
type AuthHandlers struct {
	accounts *account.Service
	verifier *google.Verifier
	baseURL  string
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(accounts *account.Service, verifier *google.Verifier, baseURL string) *AuthHandlers {
	return &AuthHandlers{
		accounts: accounts,
		verifier: verifier,
		baseURL:  baseURL,
	}
}

// RegisterRequest is the request body for registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new local account.
func (h *AuthHandlers) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, "Invalid request")
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return fail(c, "Username, email and password are required")
	}

	_, err := h.accounts.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, account.ErrDuplicateEmail):
		return fail(c, "Email already exists")
	case errors.Is(err, account.ErrDuplicateUsername):
		return fail(c, "Username already exists")
	case err != nil:
		slog.Error("register_failed", "error", err)
		return failServer(c)
	}

	return ok(c, "Registration successful")
}

// LoginRequest is the request body for local login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an email/password pair.
func (h *AuthHandlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, "Invalid request")
	}

	user, err := h.accounts.AuthenticateLocal(c.Request().Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, account.ErrInvalidCredentials):
		return fail(c, "Invalid email or password")
	case err != nil:
		slog.Error("login_failed", "error", err)
		return failServer(c)
	}

	return okUser(c, "Login successful", user)
}

// ForgotPasswordRequest is the request body for requesting a reset link.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword issues a password reset token and mails it.
func (h *AuthHandlers) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, "Invalid request")
	}

	_, err := h.accounts.RequestPasswordReset(c.Request().Context(), req.Email)
	switch {
	case errors.Is(err, account.ErrEmailNotFound):
		return fail(c, "Email not found")
	case err != nil:
		slog.Error("forgot_password_failed", "error", err)
		return failServer(c)
	}

	return ok(c, "Password reset link sent to your email")
}

// ResetPasswordRequest is the request body for redeeming a reset token.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// ResetPassword redeems a reset token and sets the new password.
func (h *AuthHandlers) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, "Invalid request")
	}

	err := h.accounts.CompletePasswordReset(c.Request().Context(), req.Token, req.NewPassword)
	switch {
	case errors.Is(err, account.ErrInvalidToken):
		return fail(c, "Invalid token")
	case errors.Is(err, account.ErrTokenExpiredOrUsed):
		return fail(c, "Token expired or invalid")
	case err != nil:
		slog.Error("reset_password_failed", "error", err)
		return failServer(c)
	}

	return ok(c, "Password reset successful")
}

// GoogleSignInRequest is the request body for Google sign-in.
type GoogleSignInRequest struct {
	Token string `json:"token"`
}

// GoogleSignIn verifies a Google ID token and signs the user in,
// creating the account on first contact.
func (h *AuthHandlers) GoogleSignIn(c echo.Context) error {
	var req GoogleSignInRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, "Invalid request")
	}
	if strings.TrimSpace(req.Token) == "" {
		return fail(c, "Google ID token is required")
	}

	user, err := h.accounts.AuthenticateOAuth(c.Request().Context(), req.Token)
	switch {
	case errors.Is(err, google.ErrTokenInvalid):
		return fail(c, "Invalid Google token: "+tokenErrorDetail(err))
	case errors.Is(err, account.ErrEmailMissing):
		return fail(c, "Email not found in Google token")
	case err != nil:
		slog.Error("google_signin_failed", "error", err)
		return failServer(c)
	}

	return okUser(c, "Google sign-in successful", user)
}

// GoogleLogin returns the Google OAuth consent screen URL for the
// authorization-code flow.
func (h *AuthHandlers) GoogleLogin(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"authUrl": h.verifier.ConsentURL(h.baseURL),
	})
}

// Logout acknowledges a logout. The API is stateless, so there is no
// server-side session to destroy.
func (h *AuthHandlers) Logout(c echo.Context) error {
	return ok(c, "Logout successful")
}

// tokenErrorDetail strips the sentinel prefix so the response carries
// only the verification detail.
func tokenErrorDetail(err error) string {
	return strings.TrimPrefix(err.Error(), google.ErrTokenInvalid.Error()+": ")
}
