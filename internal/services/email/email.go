// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email delivers account notifications over SMTP.
package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/techyspine/server/internal/config"
	"github.com/wneessen/go-mail"
)

// Service sends account mail via SMTP using go-mail.
type Service struct {
	cfg     *config.SMTPConfig
	baseURL string
}

// NewService creates a new email service.
func NewService(cfg *config.SMTPConfig, baseURL string) (*Service, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP from address is required")
	}

	return &Service{
		cfg:     cfg,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// SendWelcome greets a freshly registered user.
func (s *Service) SendWelcome(ctx context.Context, toEmail, username string) error {
	body := fmt.Sprintf("Welcome to TechySpine, %s!\n\n"+
		"Your account has been successfully created.\n\n"+
		"Start your learning journey: %s\n\n"+
		"Happy Learning!\n\n"+
		"Best regards,\n"+
		"TechySpine Team", username, s.baseURL)

	return s.send(toEmail, "Welcome to TechySpine!", body)
}

// SendPasswordReset mails a reset link carrying the raw token.
func (s *Service) SendPasswordReset(ctx context.Context, toEmail, username, token string) error {
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.baseURL, token)

	body := fmt.Sprintf("Hello %s,\n\n"+
		"We received a request to reset your password. Click the link below to create a new password:\n\n"+
		"%s\n\n"+
		"This link will expire in 24 hours.\n\n"+
		"If you didn't request a password reset, please ignore this email.\n\n"+
		"Best regards,\n"+
		"TechySpine Team", username, resetLink)

	return s.send(toEmail, "TechySpine - Password Reset Request", body)
}

// send sends an email via SMTP using go-mail.
func (s *Service) send(to, subject, body string) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	// Build client options
	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	// Configure TLS based on config and port
	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Use implicit TLS (SSL) for port 465, STARTTLS for others
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	// Add authentication if credentials are provided
	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
