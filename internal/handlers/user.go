// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/techyspine/server/internal/models"
	"github.com/techyspine/server/internal/repository"
)

// UserHandlers contains handlers for the user profile and learning data.
type UserHandlers struct {
	repo *repository.Repository
}

// NewUser creates a new UserHandlers instance.
func NewUser(repo *repository.Repository) *UserHandlers {
	return &UserHandlers{repo: repo}
}

// difficultyStats counts completed versus total topics of one difficulty.
type difficultyStats struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// GetProfile returns the full profile of a user, including difficulty
// statistics derived from their learning progress.
func (h *UserHandlers) GetProfile(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return fail(c, "Invalid user ID")
	}
	ctx := c.Request().Context()

	user, err := h.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, "User not found")
		}
		slog.Error("get_profile_failed", "error", err, "user_id", userID)
		return failServer(c)
	}

	progress, err := h.repo.ListLearningProgress(ctx, userID)
	if err != nil {
		slog.Error("get_profile_failed", "error", err, "user_id", userID)
		return failServer(c)
	}
	practice, err := h.repo.ListPracticeHistory(ctx, userID)
	if err != nil {
		slog.Error("get_profile_failed", "error", err, "user_id", userID)
		return failServer(c)
	}

	easy := countDifficulty(progress, isEasyTopic)
	medium := countDifficulty(progress, isMediumTopic)
	hard := countDifficulty(progress, isHardTopic)

	profile := map[string]any{
		"id":           user.ID,
		"username":     user.Username,
		"email":        user.Email,
		"profileImage": user.ProfileImage,
		"provider":     user.Provider,

		"problemsSolved": user.ProblemsSolved,
		"learningStreak": user.LearningStreak,
		"skillRating":    user.SkillRating,
		"skills":         user.Skills,

		"easyStats":   easy,
		"mediumStats": medium,
		"hardStats":   hard,

		"learningCount": len(progress),
		"practiceCount": len(practice),

		"createdAt": user.CreatedAt,
		"lastLogin": user.LastLogin,
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"user":    profile,
	})
}

// ProfileUpdateRequest is the request body for profile updates. Empty
// fields are left unchanged.
type ProfileUpdateRequest struct {
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	ProfileImage *string `json:"profileImage"`
}

// UpdateProfile changes username, email, or profile image of a user.
func (h *UserHandlers) UpdateProfile(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return fail(c, "Invalid user ID")
	}

	var req ProfileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, "Invalid request")
	}

	var user *models.User
	err = h.repo.InTx(c.Request().Context(), func(r *repository.Repository) error {
		ctx := c.Request().Context()

		user, err = r.GetUserByID(ctx, userID)
		if err != nil {
			return err
		}

		if req.Username != "" && req.Username != user.Username {
			other, err := r.GetUserByUsername(ctx, req.Username)
			if err == nil && other.ID != userID {
				return repository.ErrDuplicateUsername
			}
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			user.Username = req.Username
		}

		if req.Email != "" && req.Email != user.Email {
			other, err := r.GetUserByEmail(ctx, req.Email)
			if err == nil && other.ID != userID {
				return repository.ErrDuplicateEmail
			}
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			user.Email = req.Email
		}

		if req.ProfileImage != nil {
			user.ProfileImage = req.ProfileImage
		}

		return r.UpdateUser(ctx, user)
	})
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fail(c, "User not found")
	case errors.Is(err, repository.ErrDuplicateUsername):
		return fail(c, "Username already taken")
	case errors.Is(err, repository.ErrDuplicateEmail):
		return fail(c, "Email already in use")
	case err != nil:
		slog.Error("update_profile_failed", "error", err, "user_id", userID)
		return failServer(c)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Profile updated successfully",
		"user": map[string]any{
			"id":           user.ID,
			"username":     user.Username,
			"email":        user.Email,
			"profileImage": user.ProfileImage,
		},
	})
}

// GetProgress lists all learning progress records of a user.
func (h *UserHandlers) GetProgress(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return fail(c, "Invalid user ID")
	}

	progress, err := h.repo.ListLearningProgress(c.Request().Context(), userID)
	if err != nil {
		slog.Error("get_progress_failed", "error", err, "user_id", userID)
		return failServer(c)
	}
	if progress == nil {
		progress = []models.LearningProgress{}
	}

	return c.JSON(http.StatusOK, progress)
}

// GetPractice lists all practice history records of a user.
func (h *UserHandlers) GetPractice(c echo.Context) error {
	userID, err := parseUserID(c)
	if err != nil {
		return fail(c, "Invalid user ID")
	}

	practice, err := h.repo.ListPracticeHistory(c.Request().Context(), userID)
	if err != nil {
		slog.Error("get_practice_failed", "error", err, "user_id", userID)
		return failServer(c)
	}
	if practice == nil {
		practice = []models.PracticeHistory{}
	}

	return c.JSON(http.StatusOK, practice)
}

func parseUserID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("userId"), 10, 64)
}

// Difficulty is derived from the curriculum layout: C and introduction
// topics are easy, the other languages are medium, and topics touching
// pointers, inheritance, or anything advanced are hard.

func isEasyTopic(p *models.LearningProgress) bool {
	return p.Language == "C" || strings.Contains(strings.ToLower(p.Topic), "introduction")
}

func isMediumTopic(p *models.LearningProgress) bool {
	switch p.Language {
	case "JAVA", "CPP", "MYSQL":
		return true
	}
	return false
}

func isHardTopic(p *models.LearningProgress) bool {
	topic := strings.ToLower(p.Topic)
	return strings.Contains(topic, "advanced") ||
		strings.Contains(topic, "pointer") ||
		strings.Contains(topic, "inheritance")
}

func countDifficulty(progress []models.LearningProgress, match func(*models.LearningProgress) bool) difficultyStats {
	var stats difficultyStats
	for i := range progress {
		if !match(&progress[i]) {
			continue
		}
		stats.Total++
		if progress[i].Completed {
			stats.Completed++
		}
	}
	return stats
}
