package data

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// FavoriteRepository handles the (user, question) bookmark relation.
type FavoriteRepository struct {
	db *sqlx.DB
}

// NewFavoriteRepository creates a new FavoriteRepository.
func NewFavoriteRepository(db *sqlx.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Exists reports whether the user has favorited the question.
func (r *FavoriteRepository) Exists(ctx context.Context, userID string, questionID int64) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM favorites WHERE user_id = ? AND question_id = ?`
	if err := r.db.GetContext(ctx, &count, query, userID, questionID); err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return count > 0, nil
}

// Toggle flips the favorite state for the pair and reports the resulting
// state. The delete-then-insert sequence runs in one transaction and the
// unique (user_id, question_id) key guarantees no duplicate rows.
func (r *FavoriteRepository) Toggle(ctx context.Context, userID string, questionID int64, now time.Time) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ? AND question_id = ?`, userID, questionID)
	if err != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	favorited := false
	if removed == 0 {
		if _, err := tx.ExecContext(ctx, `INSERT INTO favorites (user_id, question_id, created_at) VALUES (?, ?, ?)`, userID, questionID, now); err != nil {
			return false, fmt.Errorf("failed to add favorite: %w", err)
		}
		favorited = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit favorite toggle: %w", err)
	}
	return favorited, nil
}

// CountForQuestion returns how many users favorited the question. The count
// is queried on demand rather than denormalized.
func (r *FavoriteRepository) CountForQuestion(ctx context.Context, questionID int64) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM favorites WHERE question_id = ?`, questionID); err != nil {
		return 0, fmt.Errorf("failed to count favorites: %w", err)
	}
	return count, nil
}
