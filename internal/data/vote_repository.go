package data

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// VoteRepository records votes against questions and answers. A user holds at
// most one vote per target; the unique indexes on (user_id, question_id) and
// (user_id, answer_id) back the in-transaction existence check.
type VoteRepository struct {
	db *sqlx.DB
}

// NewVoteRepository creates a new VoteRepository.
func NewVoteRepository(db *sqlx.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// VoteQuestion records a vote by the user on the question and bumps its vote
// counter, all in one transaction. Returns false without error when the user
// has already voted on this question.
func (r *VoteRepository) VoteQuestion(ctx context.Context, userID string, questionID int64, now time.Time) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM votes WHERE user_id = ? AND question_id = ?`, userID, questionID); err != nil {
		return false, fmt.Errorf("failed to check existing vote: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO votes (user_id, question_id, value, created_at) VALUES (?, ?, 1, ?)`, userID, questionID, now); err != nil {
		return false, fmt.Errorf("failed to insert question vote: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE questions SET vote_count = vote_count + 1 WHERE id = ?`, questionID); err != nil {
		return false, fmt.Errorf("failed to increment question vote count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit question vote: %w", err)
	}
	return true, nil
}

// VoteAnswer records a vote by the user on the answer and bumps its vote
// counter. Returns false without error when the user has already voted on
// this answer.
func (r *VoteRepository) VoteAnswer(ctx context.Context, userID string, answerID int64, now time.Time) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM votes WHERE user_id = ? AND answer_id = ?`, userID, answerID); err != nil {
		return false, fmt.Errorf("failed to check existing vote: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO votes (user_id, answer_id, value, created_at) VALUES (?, ?, 1, ?)`, userID, answerID, now); err != nil {
		return false, fmt.Errorf("failed to insert answer vote: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE answers SET vote_count = vote_count + 1 WHERE id = ?`, answerID); err != nil {
		return false, fmt.Errorf("failed to increment answer vote count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit answer vote: %w", err)
	}
	return true, nil
}
