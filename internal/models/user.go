// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// Provider is the origin of a user's identity.
type Provider string

const (
	ProviderLocal  Provider = "LOCAL"
	ProviderGoogle Provider = "GOOGLE"
)

// Role controls access to the admin surface.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is an account on the platform. Email and username are unique.
// PasswordHash is nil for accounts created via Google sign-in; such
// accounts can never authenticate with a password.
type User struct { //nolint:govet // fieldalignment not critical for models
	ID           int64    `db:"id" json:"id"`
	Username     string   `db:"username" json:"username"`
	Email        string   `db:"email" json:"email"`
	PasswordHash *string  `db:"password_hash" json:"-"`
	FullName     *string  `db:"full_name" json:"fullName,omitempty"`
	Provider     Provider `db:"provider" json:"provider"`
	Role         Role     `db:"role" json:"role"`
	ProfileImage *string  `db:"profile_image" json:"profileImage,omitempty"`

	// Learning profile counters, all zeroed on registration.
	ProblemsSolved      int     `db:"problems_solved" json:"problemsSolved"`
	TotalSubmissions    int     `db:"total_submissions" json:"totalSubmissions"`
	AcceptedSubmissions int     `db:"accepted_submissions" json:"acceptedSubmissions"`
	EasySolved          int     `db:"easy_solved" json:"easySolved"`
	MediumSolved        int     `db:"medium_solved" json:"mediumSolved"`
	HardSolved          int     `db:"hard_solved" json:"hardSolved"`
	LearningStreak      int     `db:"learning_streak" json:"learningStreak"`
	SkillRating         float64 `db:"skill_rating" json:"skillRating"`
	GlobalRank          *int64  `db:"global_rank" json:"globalRank,omitempty"`
	Skills              *string `db:"skills" json:"skills,omitempty"`
	TopicsCompleted     int     `db:"topics_completed" json:"topicsCompleted"`

	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	LastLogin *time.Time `db:"last_login" json:"lastLogin,omitempty"`
}

// HasPassword reports whether the user can authenticate with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
