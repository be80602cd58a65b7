// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package google verifies Google ID tokens against the tokeninfo endpoint.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/techyspine/server/internal/config"
)

// DefaultTokenInfoURL is Google's token introspection endpoint.
const DefaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// ErrTokenInvalid is returned for every verification failure: blank token,
// issuer-side error, empty response, or missing subject claim.
var ErrTokenInvalid = errors.New("invalid google token")

// TokenInfo holds the verified claims extracted from a Google ID token.
type TokenInfo struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// tokenInfoResponse mirrors the JSON body of the tokeninfo endpoint. All
// values arrive as strings, including email_verified.
type tokenInfoResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Audience         string `json:"aud"`
	Subject          string `json:"sub"`
	Email            string `json:"email"`
	EmailVerified    string `json:"email_verified"`
	Name             string `json:"name"`
	Picture          string `json:"picture"`
}

// Verifier validates Google ID tokens with a single blocking round-trip to
// the issuer. There is no retry policy; any failure surfaces immediately.
type Verifier struct {
	client   *http.Client
	endpoint string
	clientID string
}

// NewVerifier creates a verifier from configuration.
func NewVerifier(cfg *config.GoogleConfig) *Verifier {
	endpoint := cfg.TokenInfoURL
	if endpoint == "" {
		endpoint = DefaultTokenInfoURL
	}
	return &Verifier{
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: endpoint,
		clientID: cfg.ClientID,
	}
}

// Verify checks an ID token with the issuer and returns the verified claims.
func (v *Verifier) Verify(ctx context.Context, idToken string) (*TokenInfo, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, fmt.Errorf("%w: ID token is empty", ErrTokenInvalid)
	}

	reqURL := v.endpoint + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	defer resp.Body.Close()

	var body tokenInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: no response from token verification", ErrTokenInvalid)
	}

	if body.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrTokenInvalid, body.ErrorDescription)
	}

	// Audience mismatch is logged, not rejected: the client ID may be
	// configured differently between frontend and backend deployments.
	if body.Audience != "" && v.clientID != "" && body.Audience != v.clientID {
		slog.Warn("google_token_audience_mismatch", "aud", body.Audience)
	}

	if body.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject (sub) claim", ErrTokenInvalid)
	}

	info := &TokenInfo{
		Subject:       body.Subject,
		Email:         body.Email,
		EmailVerified: strings.EqualFold(body.EmailVerified, "true"),
		Name:          body.Name,
		Picture:       body.Picture,
	}

	slog.Info("google_token_verified", "email", info.Email)
	return info, nil
}

// ConsentURL builds the Google OAuth consent screen URL for the
// authorization-code flow started from the frontend.
func (v *Verifier) ConsentURL(baseURL string) string {
	redirectURI := strings.TrimSuffix(baseURL, "/") + "/api/auth/google-callback"

	q := url.Values{}
	q.Set("client_id", v.clientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("response_type", "code")
	q.Set("scope", "openid email profile")
	q.Set("prompt", "consent")

	return "https://accounts.google.com/o/oauth2/v2/auth?" + q.Encode()
}
