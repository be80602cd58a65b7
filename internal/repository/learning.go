// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/techyspine/server/internal/models"
)

// SaveLearningProgress inserts or updates a progress record, touching
// last_accessed either way.
func (r *Repository) SaveLearningProgress(ctx context.Context, p *models.LearningProgress) error {
	now := time.Now().UTC()
	p.LastAccessed = &now

	if p.ID == 0 {
		res, err := r.q.ExecContext(ctx,
			`INSERT INTO learning_progress (user_id, language, topic, progress, completed, last_accessed) VALUES (?, ?, ?, ?, ?, ?)`,
			p.UserID, p.Language, p.Topic, p.Progress, p.Completed, p.LastAccessed)
		if err != nil {
			return wrapError(err)
		}
		p.ID, err = res.LastInsertId()
		return err
	}

	_, err := r.q.ExecContext(ctx,
		`UPDATE learning_progress SET language = ?, topic = ?, progress = ?, completed = ?, last_accessed = ? WHERE id = ?`,
		p.Language, p.Topic, p.Progress, p.Completed, p.LastAccessed, p.ID)
	return wrapError(err)
}

// ListLearningProgress returns all progress records for a user.
func (r *Repository) ListLearningProgress(ctx context.Context, userID int64) ([]models.LearningProgress, error) {
	var progress []models.LearningProgress
	err := r.q.SelectContext(ctx, &progress, `SELECT * FROM learning_progress WHERE user_id = ?`, userID)
	return progress, err
}

// SavePracticeHistory inserts or updates a practice record.
func (r *Repository) SavePracticeHistory(ctx context.Context, h *models.PracticeHistory) error {
	if h.Solved && h.SolvedAt == nil {
		h.MarkSolved(time.Now().UTC())
	}

	if h.ID == 0 {
		res, err := r.q.ExecContext(ctx,
			`INSERT INTO practice_history (user_id, language, problem_name, solved, attempts, solved_at) VALUES (?, ?, ?, ?, ?, ?)`,
			h.UserID, h.Language, h.ProblemName, h.Solved, h.Attempts, h.SolvedAt)
		if err != nil {
			return wrapError(err)
		}
		h.ID, err = res.LastInsertId()
		return err
	}

	_, err := r.q.ExecContext(ctx,
		`UPDATE practice_history SET language = ?, problem_name = ?, solved = ?, attempts = ?, solved_at = ? WHERE id = ?`,
		h.Language, h.ProblemName, h.Solved, h.Attempts, h.SolvedAt, h.ID)
	return wrapError(err)
}

// ListPracticeHistory returns all practice records for a user.
func (r *Repository) ListPracticeHistory(ctx context.Context, userID int64) ([]models.PracticeHistory, error) {
	var history []models.PracticeHistory
	err := r.q.SelectContext(ctx, &history, `SELECT * FROM practice_history WHERE user_id = ?`, userID)
	return history, err
}
