// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"log/slog"
)

// LogSender writes notifications to the log instead of sending mail. Used
// in development when no SMTP host is configured.
type LogSender struct{}

// NewLogSender creates a log-only sender.
func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) SendWelcome(ctx context.Context, toEmail, username string) error {
	slog.InfoContext(ctx, "welcome_email", "to", toEmail, "username", username)
	return nil
}

func (s *LogSender) SendPasswordReset(ctx context.Context, toEmail, username, token string) error {
	slog.InfoContext(ctx, "password_reset_email", "to", toEmail, "username", username, "token", token)
	return nil
}
