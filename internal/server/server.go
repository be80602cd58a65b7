// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package server wires configuration, database, services, and routes into
// a running HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/techyspine/server/internal/config"
	"github.com/techyspine/server/internal/database"
	"github.com/techyspine/server/internal/handlers"
	"github.com/techyspine/server/internal/repository"
	"github.com/techyspine/server/internal/services/account"
	"github.com/techyspine/server/internal/services/email"
	"github.com/techyspine/server/internal/services/google"
	"github.com/urfave/cli/v3"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database (migrations run on open)
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	repo := repository.New(db)

	// Account mail goes to the log when no SMTP host is configured.
	var notifier account.Notifier
	if cfg.SMTP.Host != "" {
		notifier, err = email.NewService(&cfg.SMTP, cfg.Server.BaseURL)
		if err != nil {
			return fmt.Errorf("failed to create email service: %w", err)
		}
	} else {
		slog.Info("no SMTP host configured, emails are logged")
		notifier = email.NewLogSender()
	}

	verifier := google.NewVerifier(&cfg.Google)
	accounts := account.NewService(repo, notifier, verifier)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	setupMiddleware(e, cfg)
	setupRoutes(e, cfg, repo, accounts, verifier)

	return startWithGracefulShutdown(ctx, e, cfg)
}

func setupRoutes(e *echo.Echo, cfg *config.Config, repo *repository.Repository, accounts *account.Service, verifier *google.Verifier) {
	h := handlers.New()
	authHandlers := handlers.NewAuth(accounts, verifier, cfg.Server.BaseURL)
	userHandlers := handlers.NewUser(repo)

	e.GET("/health", h.Health)

	auth := e.Group("/api/auth")
	auth.POST("/register", authHandlers.Register)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/forgot-password", authHandlers.ForgotPassword)
	auth.POST("/reset-password", authHandlers.ResetPassword)
	auth.POST("/google-signin", authHandlers.GoogleSignIn)
	auth.GET("/google", authHandlers.GoogleLogin)
	auth.POST("/logout", authHandlers.Logout)

	user := e.Group("/api/user")
	user.GET("/profile/:userId", userHandlers.GetProfile)
	user.PUT("/profile/:userId", userHandlers.UpdateProfile)
	user.GET("/progress/:userId", userHandlers.GetProgress)
	user.GET("/practice/:userId", userHandlers.GetPractice)
}

func startWithGracefulShutdown(ctx context.Context, e *echo.Echo, cfg *config.Config) error {
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
