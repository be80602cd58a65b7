// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/techyspine/server/internal/models"
)

// CreateResetToken stores a newly issued password reset token. A user may
// accumulate several historical tokens; only validity decides which ones
// can still be redeemed.
func (r *Repository) CreateResetToken(ctx context.Context, token *models.PasswordResetToken) error {
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}

	res, err := r.q.ExecContext(ctx,
		`INSERT INTO password_reset_tokens (token, user_id, expires_at, used, created_at) VALUES (?, ?, ?, ?, ?)`,
		token.Token, token.UserID, token.ExpiresAt, token.Used, token.CreatedAt)
	if err != nil {
		return wrapError(err)
	}

	token.ID, err = res.LastInsertId()
	return err
}

// GetResetToken retrieves a reset token by its raw value.
func (r *Repository) GetResetToken(ctx context.Context, raw string) (*models.PasswordResetToken, error) {
	var token models.PasswordResetToken
	if err := r.q.GetContext(ctx, &token, `SELECT * FROM password_reset_tokens WHERE token = ?`, raw); err != nil {
		return nil, wrapError(err)
	}
	return &token, nil
}

// MarkResetTokenUsed consumes a token. The transition is terminal.
func (r *Repository) MarkResetTokenUsed(ctx context.Context, id int64) error {
	_, err := r.q.ExecContext(ctx, `UPDATE password_reset_tokens SET used = 1 WHERE id = ?`, id)
	return err
}

// DeleteExpiredResetTokens removes tokens past their expiry.
func (r *Repository) DeleteExpiredResetTokens(ctx context.Context) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM password_reset_tokens WHERE expires_at < ?`, time.Now().UTC())
	return err
}
