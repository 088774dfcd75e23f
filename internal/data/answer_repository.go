package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// answerOrders maps the public answer order keys to ORDER BY clauses. The
// "supports" ordering breaks ties by earliest creation so established answers
// stay ahead of newer ones with equal votes.
var answerOrders = map[string]string{
	"supports": "vote_count DESC, created_at ASC",
	"new":      "created_at DESC",
}

// AnswerOrderClause resolves an answer order key to its ORDER BY clause and
// the normalized key. Unknown or absent keys fall back to "supports".
func AnswerOrderClause(key string) (string, string) {
	if clause, ok := answerOrders[key]; ok {
		return clause, key
	}
	return answerOrders["supports"], "supports"
}

const answerColumns = `id, question_id, author_id, content, vote_count, adopted_at, created_at, updated_at`

// SQLAnswerRepository is a concrete implementation of the answer repository
// using sqlx.
type SQLAnswerRepository struct {
	db *sqlx.DB
}

// NewSQLAnswerRepository creates a new SQLAnswerRepository.
func NewSQLAnswerRepository(db *sqlx.DB) *SQLAnswerRepository {
	return &SQLAnswerRepository{db: db}
}

// Create inserts a new answer and bumps the parent question's answer counter.
// Both statements run in one transaction; the counter update is a single
// increment so concurrent answers never lose counts.
func (r *SQLAnswerRepository) Create(ctx context.Context, answer *Answer) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO answers (question_id, author_id, content, created_at, updated_at)
		VALUES (:question_id, :author_id, :content, :created_at, :updated_at)`
	res, err := tx.NamedExecContext(ctx, query, answer)
	if err != nil {
		return fmt.Errorf("failed to insert answer: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted answer id: %w", err)
	}
	answer.ID = id

	if _, err := tx.ExecContext(ctx, `UPDATE questions SET answer_count = answer_count + 1 WHERE id = ?`, answer.QuestionID); err != nil {
		return fmt.Errorf("failed to increment question answer count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit answer: %w", err)
	}
	return nil
}

// GetByID retrieves a single answer by its ID.
func (r *SQLAnswerRepository) GetByID(ctx context.Context, id int64) (*Answer, error) {
	var answer Answer
	query := `SELECT ` + answerColumns + ` FROM answers WHERE id = ?`
	if err := r.db.GetContext(ctx, &answer, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get answer by id: %w", err)
	}
	return &answer, nil
}

// Update rewrites the answer's content.
func (r *SQLAnswerRepository) Update(ctx context.Context, answer *Answer) error {
	query := `UPDATE answers SET content = :content, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, answer)
	if err != nil {
		return fmt.Errorf("failed to update answer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByQuestion retrieves all answers for a question in the requested order.
func (r *SQLAnswerRepository) ListByQuestion(ctx context.Context, questionID int64, orderKey string) ([]*Answer, error) {
	orderClause, _ := AnswerOrderClause(orderKey)
	answers := []*Answer{}
	query := `SELECT ` + answerColumns + ` FROM answers WHERE question_id = ? ORDER BY ` + orderClause
	if err := r.db.SelectContext(ctx, &answers, query, questionID); err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	return answers, nil
}

// GetAdopted retrieves the question's accepted answer, if any. ErrNotFound
// means no answer has been adopted.
func (r *SQLAnswerRepository) GetAdopted(ctx context.Context, questionID int64) (*Answer, error) {
	var answer Answer
	query := `SELECT ` + answerColumns + ` FROM answers WHERE question_id = ? AND adopted_at IS NOT NULL`
	if err := r.db.GetContext(ctx, &answer, query, questionID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get adopted answer: %w", err)
	}
	return &answer, nil
}

// Adopt marks the given answer as the question's accepted one and resolves
// the question. Any previously adopted answer is cleared in the same
// transaction, so at most one answer per question ever carries a non-null
// adopted_at.
func (r *SQLAnswerRepository) Adopt(ctx context.Context, questionID, answerID int64, now time.Time) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE answers SET adopted_at = NULL WHERE question_id = ? AND adopted_at IS NOT NULL`, questionID); err != nil {
		return fmt.Errorf("failed to clear previous adoption: %w", err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE answers SET adopted_at = ? WHERE id = ? AND question_id = ?`, now, answerID, questionID)
	if err != nil {
		return fmt.Errorf("failed to adopt answer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `UPDATE questions SET status = ? WHERE id = ?`, StatusResolved, questionID); err != nil {
		return fmt.Errorf("failed to resolve question: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit adoption: %w", err)
	}
	return nil
}
