package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// QuestionListParams narrows and orders a question listing.
type QuestionListParams struct {
	Query      string // substring match on title
	AuthorID   string
	Status     *int
	PublicOnly bool // exclude drafts
	Order      string // see questionOrders
	Page       int
	Limit      int
}

// questionOrders maps the public order keys to ORDER BY clauses. Unknown keys
// fall back to "new".
var questionOrders = map[string]string{
	"new":   "created_at DESC",
	"hot":   "answer_count DESC, created_at DESC",
	"votes": "vote_count DESC, created_at DESC",
}

// QuestionOrderClause resolves an order key to its ORDER BY clause and the
// normalized key.
func QuestionOrderClause(key string) (string, string) {
	if clause, ok := questionOrders[key]; ok {
		return clause, key
	}
	return questionOrders["new"], "new"
}

const questionColumns = `id, author_id, title, slug, content, answer_count, view_count, vote_count, status, created_at, updated_at`

// SQLQuestionRepository is a concrete implementation of the question
// repository using sqlx.
type SQLQuestionRepository struct {
	db *sqlx.DB
}

// NewSQLQuestionRepository creates a new SQLQuestionRepository.
func NewSQLQuestionRepository(db *sqlx.DB) *SQLQuestionRepository {
	return &SQLQuestionRepository{db: db}
}

// Create inserts a new question and sets its generated ID.
func (r *SQLQuestionRepository) Create(ctx context.Context, question *Question) error {
	query := `INSERT INTO questions (author_id, title, slug, content, status, created_at, updated_at)
		VALUES (:author_id, :title, :slug, :content, :status, :created_at, :updated_at)`
	res, err := r.db.NamedExecContext(ctx, query, question)
	if err != nil {
		return fmt.Errorf("failed to insert question: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted question id: %w", err)
	}
	question.ID = id
	return nil
}

// GetByID retrieves a single question by its ID.
func (r *SQLQuestionRepository) GetByID(ctx context.Context, id int64) (*Question, error) {
	var question Question
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = ?`
	if err := r.db.GetContext(ctx, &question, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get question by id: %w", err)
	}
	return &question, nil
}

// Update rewrites the mutable fields of a question. The slug is derived once
// at creation and is deliberately not part of the statement.
func (r *SQLQuestionRepository) Update(ctx context.Context, question *Question) error {
	query := `UPDATE questions SET title = :title, content = :content, status = :status, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, question)
	if err != nil {
		return fmt.Errorf("failed to update question: %w", err)
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

// Delete removes a question. Answers, favorites, votes and tag links are
// removed by the store's cascade rules.
func (r *SQLQuestionRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
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

// IncrementViews bumps the view counter by one as a single statement, so
// concurrent views never lose updates.
func (r *SQLQuestionRepository) IncrementViews(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE questions SET view_count = view_count + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment question views: %w", err)
	}
	return nil
}

// List retrieves a page of questions plus the total match count.
func (r *SQLQuestionRepository) List(ctx context.Context, params QuestionListParams) ([]*Question, int64, error) {
	where := "1 = 1"
	args := []interface{}{}
	if params.Query != "" {
		where += " AND title LIKE ?"
		args = append(args, "%"+params.Query+"%")
	}
	if params.AuthorID != "" {
		where += " AND author_id = ?"
		args = append(args, params.AuthorID)
	}
	if params.Status != nil {
		where += " AND status = ?"
		args = append(args, *params.Status)
	}
	if params.PublicOnly {
		where += " AND status <> ?"
		args = append(args, StatusDraft)
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM questions WHERE ` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	orderClause, _ := QuestionOrderClause(params.Order)
	query := `SELECT ` + questionColumns + ` FROM questions WHERE ` + where +
		` ORDER BY ` + orderClause + ` LIMIT ? OFFSET ?`
	args = append(args, params.Limit, (params.Page-1)*params.Limit)

	questions := []*Question{}
	if err := r.db.SelectContext(ctx, &questions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, total, nil
}

// ListByTag retrieves a page of published questions carrying the named tag.
func (r *SQLQuestionRepository) ListByTag(ctx context.Context, tag string, page, limit int) ([]*Question, int64, error) {
	joined := ` FROM questions q
		JOIN question_tags qt ON qt.question_id = q.id
		JOIN tags t ON t.id = qt.tag_id
		WHERE t.name = ? AND q.status = ?`

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*)`+joined, tag, StatusPublished); err != nil {
		return nil, 0, fmt.Errorf("failed to count questions by tag: %w", err)
	}

	query := `SELECT q.id, q.author_id, q.title, q.slug, q.content, q.answer_count, q.view_count, q.vote_count, q.status, q.created_at, q.updated_at` +
		joined + ` ORDER BY q.created_at DESC LIMIT ? OFFSET ?`
	questions := []*Question{}
	if err := r.db.SelectContext(ctx, &questions, query, tag, StatusPublished, limit, (page-1)*limit); err != nil {
		return nil, 0, fmt.Errorf("failed to list questions by tag: %w", err)
	}
	return questions, total, nil
}

// ListPublished retrieves every published or resolved question, newest first.
// Used by the sitemap.
func (r *SQLQuestionRepository) ListPublished(ctx context.Context) ([]*Question, error) {
	questions := []*Question{}
	query := `SELECT ` + questionColumns + ` FROM questions WHERE status IN (?, ?) ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &questions, query, StatusPublished, StatusResolved); err != nil {
		return nil, fmt.Errorf("failed to list published questions: %w", err)
	}
	return questions, nil
}
