// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/techyspine/server/internal/models"
)

func TestUser_HasPassword(t *testing.T) {
	hash := "$2a$10$abcdefghijklmnopqrstuv"
	empty := ""

	tests := []struct {
		name string
		hash *string
		want bool
	}{
		{"local user with hash", &hash, true},
		{"google user without hash", nil, false},
		{"empty hash", &empty, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &models.User{PasswordHash: tt.hash}
			assert.Equal(t, tt.want, u.HasPassword())
		})
	}
}

func TestPasswordResetToken_Valid(t *testing.T) {
	now := time.Now()

	fresh := &models.PasswordResetToken{ExpiresAt: now.Add(models.ResetTokenValidity)}
	assert.True(t, fresh.Valid(now))

	used := &models.PasswordResetToken{ExpiresAt: now.Add(time.Hour), Used: true}
	assert.False(t, used.Valid(now))

	expired := &models.PasswordResetToken{ExpiresAt: now.Add(-time.Minute)}
	assert.False(t, expired.Valid(now))

	// Validity window is half-open: a token is dead exactly at expiry.
	atExpiry := &models.PasswordResetToken{ExpiresAt: now}
	assert.False(t, atExpiry.Valid(now))
}

func TestLearningProgress_SetProgress(t *testing.T) {
	p := &models.LearningProgress{}

	p.SetProgress(40)
	assert.Equal(t, 40, p.Progress)
	assert.False(t, p.Completed)

	p.SetProgress(100)
	assert.True(t, p.Completed)
}

func TestPracticeHistory_MarkSolved(t *testing.T) {
	h := &models.PracticeHistory{}
	first := time.Now()

	h.MarkSolved(first)
	assert.True(t, h.Solved)
	assert.Equal(t, first, *h.SolvedAt)

	// Solve time is stamped once and never moved.
	h.MarkSolved(first.Add(time.Hour))
	assert.Equal(t, first, *h.SolvedAt)
}
