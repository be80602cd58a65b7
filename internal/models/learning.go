// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// LearningProgress tracks how far a user is through one topic of a language.
type LearningProgress struct { //nolint:govet // fieldalignment not critical for models
	ID           int64      `db:"id" json:"id"`
	UserID       int64      `db:"user_id" json:"userId"`
	Language     string     `db:"language" json:"language"`
	Topic        string     `db:"topic" json:"topic"`
	Progress     int        `db:"progress" json:"progress"`
	Completed    bool       `db:"completed" json:"completed"`
	LastAccessed *time.Time `db:"last_accessed" json:"lastAccessed,omitempty"`
}

// SetProgress updates the progress percentage and derives completion.
func (p *LearningProgress) SetProgress(progress int) {
	p.Progress = progress
	p.Completed = progress >= 100
}

// PracticeHistory records a user's attempts at one practice problem.
type PracticeHistory struct { //nolint:govet // fieldalignment not critical for models
	ID          int64      `db:"id" json:"id"`
	UserID      int64      `db:"user_id" json:"userId"`
	Language    string     `db:"language" json:"language"`
	ProblemName string     `db:"problem_name" json:"problemName"`
	Solved      bool       `db:"solved" json:"solved"`
	Attempts    int        `db:"attempts" json:"attempts"`
	SolvedAt    *time.Time `db:"solved_at" json:"solvedAt,omitempty"`
}

// MarkSolved flags the problem as solved, stamping the solve time once.
func (h *PracticeHistory) MarkSolved(now time.Time) {
	h.Solved = true
	if h.SolvedAt == nil {
		h.SolvedAt = &now
	}
}
