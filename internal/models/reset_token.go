// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// ResetTokenValidity is how long a password reset token stays usable.
const ResetTokenValidity = 24 * time.Hour

// PasswordResetToken is a single-use credential for resetting a password.
// The token value is an opaque random string handed out once via email and
// looked up verbatim on redemption.
type PasswordResetToken struct { //nolint:govet // fieldalignment not critical for models
	ID        int64     `db:"id" json:"id"`
	Token     string    `db:"token" json:"-"`
	UserID    int64     `db:"user_id" json:"userId"`
	ExpiresAt time.Time `db:"expires_at" json:"expiresAt"`
	Used      bool      `db:"used" json:"used"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Valid reports whether the token can still be redeemed at the given time.
// A token is live only while unused and before its expiry; both consumption
// and expiry are terminal.
func (t *PasswordResetToken) Valid(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
