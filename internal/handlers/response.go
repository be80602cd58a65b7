// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/techyspine/server/internal/models"
)

// Every endpoint answers with the same envelope: a success flag, a
// human-readable message, and optionally the affected user. Domain
// failures are HTTP 400, unexpected failures HTTP 500.

func ok(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": message,
	})
}

func okUser(c echo.Context, message string, user *models.User) error {
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": message,
		"user":    userPayload(user),
	})
}

func fail(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]any{
		"success": false,
		"message": message,
	})
}

func failServer(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, map[string]any{
		"success": false,
		"message": "Internal server error",
	})
}

// userPayload is the user object embedded in auth responses.
func userPayload(user *models.User) map[string]any {
	return map[string]any{
		"id":           user.ID,
		"username":     user.Username,
		"email":        user.Email,
		"profileImage": user.ProfileImage,
		"provider":     user.Provider,
		"createdAt":    user.CreatedAt,
		"lastLogin":    user.LastLogin,
	}
}
