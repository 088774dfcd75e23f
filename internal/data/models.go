package data

import (
	"html/template"
	"time"
)

// Question statuses. A question is created as Published unless explicitly
// saved as a draft, and becomes Resolved once an answer is accepted.
const (
	StatusDraft     = 0
	StatusPublished = 1
	StatusResolved  = 2
)

// Question represents a single question in the database.
type Question struct {
	ID          int64     `db:"id"`
	AuthorID    string    `db:"author_id"`
	Title       string    `db:"title"`
	Slug        string    `db:"slug"`
	Content     string    `db:"content"`
	AnswerCount int64     `db:"answer_count"`
	ViewCount   int64     `db:"view_count"`
	VoteCount   int64     `db:"vote_count"`
	Status      int       `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`

	// Derived at view time, never persisted.
	Body          template.HTML `db:"-"`
	Tags          []*Tag        `db:"-"`
	FavoriteCount int64         `db:"-"`
}

// Owner returns the identity that created the question.
func (q *Question) Owner() string {
	return q.AuthorID
}

// IsDraft reports whether the question has not been published yet.
func (q *Question) IsDraft() bool {
	return q.Status == StatusDraft
}

// IsResolved reports whether an answer has been accepted.
func (q *Question) IsResolved() bool {
	return q.Status == StatusResolved
}

// Answer represents an answer to a question.
type Answer struct {
	ID         int64      `db:"id"`
	QuestionID int64      `db:"question_id"`
	AuthorID   string     `db:"author_id"`
	Content    string     `db:"content"`
	VoteCount  int64      `db:"vote_count"`
	AdoptedAt  *time.Time `db:"adopted_at"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`

	// Derived at view time, never persisted.
	Body template.HTML `db:"-"`
}

// Owner returns the identity that wrote the answer.
func (a *Answer) Owner() string {
	return a.AuthorID
}

// IsAdopted reports whether this is the question's accepted answer.
func (a *Answer) IsAdopted() bool {
	return a.AdoptedAt != nil
}

// Tag labels questions. Frequency counts how many questions carry the tag.
type Tag struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	Frequency int64  `db:"frequency"`
}

// Favorite marks a question bookmarked by a user. Existence is the whole
// relationship; there is no payload beyond the pair.
type Favorite struct {
	UserID     string    `db:"user_id"`
	QuestionID int64     `db:"question_id"`
	CreatedAt  time.Time `db:"created_at"`
}

// Vote records a user's vote against a question or an answer. Exactly one of
// QuestionID and AnswerID is set.
type Vote struct {
	ID         int64     `db:"id"`
	UserID     string    `db:"user_id"`
	QuestionID *int64    `db:"question_id"`
	AnswerID   *int64    `db:"answer_id"`
	Value      int       `db:"value"`
	CreatedAt  time.Time `db:"created_at"`
}
