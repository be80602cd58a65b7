// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/techyspine/server/internal/models"
)

// CreateUser inserts a new user. The creation timestamp is set here and is
// immutable afterwards. Duplicate email or username surfaces as
// ErrDuplicateEmail / ErrDuplicateUsername.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.Provider == "" {
		user.Provider = models.ProviderLocal
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	res, err := r.q.ExecContext(ctx,
		`INSERT INTO users (
			username, email, password_hash, full_name, provider, role, profile_image,
			problems_solved, total_submissions, accepted_submissions,
			easy_solved, medium_solved, hard_solved,
			learning_streak, skill_rating, global_rank, skills, topics_completed,
			created_at, last_login
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash, user.FullName, user.Provider, user.Role, user.ProfileImage,
		user.ProblemsSolved, user.TotalSubmissions, user.AcceptedSubmissions,
		user.EasySolved, user.MediumSolved, user.HardSolved,
		user.LearningStreak, user.SkillRating, user.GlobalRank, user.Skills, user.TopicsCompleted,
		user.CreatedAt, user.LastLogin)
	if err != nil {
		return wrapError(err)
	}

	user.ID, err = res.LastInsertId()
	return err
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.q.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.q.GetContext(ctx, &user, `SELECT * FROM users WHERE email = ?`, email); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by their username.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.q.GetContext(ctx, &user, `SELECT * FROM users WHERE username = ?`, username); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// EmailExists checks if a user with the given email exists.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.q.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email)
	return exists, err
}

// UsernameExists checks if a user with the given username exists.
func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.q.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`, username)
	return exists, err
}

// UpdateUser writes all mutable fields of an existing user. created_at is
// deliberately left out.
func (r *Repository) UpdateUser(ctx context.Context, user *models.User) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE users SET
			username = ?, email = ?, password_hash = ?, full_name = ?, provider = ?, role = ?, profile_image = ?,
			problems_solved = ?, total_submissions = ?, accepted_submissions = ?,
			easy_solved = ?, medium_solved = ?, hard_solved = ?,
			learning_streak = ?, skill_rating = ?, global_rank = ?, skills = ?, topics_completed = ?,
			last_login = ?
		WHERE id = ?`,
		user.Username, user.Email, user.PasswordHash, user.FullName, user.Provider, user.Role, user.ProfileImage,
		user.ProblemsSolved, user.TotalSubmissions, user.AcceptedSubmissions,
		user.EasySolved, user.MediumSolved, user.HardSolved,
		user.LearningStreak, user.SkillRating, user.GlobalRank, user.Skills, user.TopicsCompleted,
		user.LastLogin, user.ID)
	return wrapError(err)
}

// UpdateUserPassword updates a user's password hash.
func (r *Repository) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.q.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	return err
}

// UpdateLastLogin stamps a successful authentication.
func (r *Repository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.q.ExecContext(ctx, `UPDATE users SET last_login = ? WHERE id = ?`, at, id)
	return err
}
