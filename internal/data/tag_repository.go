package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TagRepository handles database operations for tags and their links to
// questions.
type TagRepository struct {
	db *sqlx.DB
}

// NewTagRepository creates a new TagRepository.
func NewTagRepository(db *sqlx.DB) *TagRepository {
	return &TagRepository{db: db}
}

// GetByName finds a tag by name. Returns ErrNotFound when absent.
func (r *TagRepository) GetByName(ctx context.Context, name string) (*Tag, error) {
	var tag Tag
	if err := r.db.GetContext(ctx, &tag, `SELECT id, name, frequency FROM tags WHERE name = ?`, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tag by name: %w", err)
	}
	return &tag, nil
}

// GetOrCreate finds a tag by name, creating it with zero frequency if needed.
func (r *TagRepository) GetOrCreate(ctx context.Context, name string) (*Tag, error) {
	tag, err := r.GetByName(ctx, name)
	if err == nil {
		return tag, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO tags (name, frequency) VALUES (?, 0)`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to insert tag: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted tag id: %w", err)
	}
	return &Tag{ID: id, Name: name}, nil
}

// ForQuestion retrieves the tags attached to a question.
func (r *TagRepository) ForQuestion(ctx context.Context, questionID int64) ([]*Tag, error) {
	tags := []*Tag{}
	query := `SELECT t.id, t.name, t.frequency FROM tags t
		JOIN question_tags qt ON qt.tag_id = t.id
		WHERE qt.question_id = ? ORDER BY t.name`
	if err := r.db.SelectContext(ctx, &tags, query, questionID); err != nil {
		return nil, fmt.Errorf("failed to get tags for question: %w", err)
	}
	return tags, nil
}

// ListAll retrieves every tag ordered by usage, most used first.
func (r *TagRepository) ListAll(ctx context.Context) ([]*Tag, error) {
	tags := []*Tag{}
	if err := r.db.SelectContext(ctx, &tags, `SELECT id, name, frequency FROM tags ORDER BY frequency DESC, name`); err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// ReplaceForQuestion swaps the question's tag set for the given tag IDs,
// adjusting tag frequencies by single-statement increments/decrements.
// Passing an empty set detaches everything (used before question deletion).
func (r *TagRepository) ReplaceForQuestion(ctx context.Context, questionID int64, tagIDs []int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current := []int64{}
	if err := tx.SelectContext(ctx, &current, `SELECT tag_id FROM question_tags WHERE question_id = ?`, questionID); err != nil {
		return fmt.Errorf("failed to read current tag links: %w", err)
	}

	wanted := make(map[int64]bool, len(tagIDs))
	for _, id := range tagIDs {
		wanted[id] = true
	}
	existing := make(map[int64]bool, len(current))
	for _, id := range current {
		existing[id] = true
	}

	for _, id := range current {
		if wanted[id] {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM question_tags WHERE question_id = ? AND tag_id = ?`, questionID, id); err != nil {
			return fmt.Errorf("failed to detach tag: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE tags SET frequency = frequency - 1 WHERE id = ? AND frequency > 0`, id); err != nil {
			return fmt.Errorf("failed to decrement tag frequency: %w", err)
		}
	}

	for _, id := range tagIDs {
		if existing[id] {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO question_tags (question_id, tag_id) VALUES (?, ?)`, questionID, id); err != nil {
			return fmt.Errorf("failed to attach tag: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE tags SET frequency = frequency + 1 WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to increment tag frequency: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tag replacement: %w", err)
	}
	return nil
}
