package service

import (
	"context"
	"strings"
	"time"

	"go-qa-app/internal/auth"
	"go-qa-app/internal/data"
)

// AnswerRepository defines the interface for database operations on answers.
type AnswerRepository interface {
	Create(ctx context.Context, answer *data.Answer) error
	GetByID(ctx context.Context, id int64) (*data.Answer, error)
	Update(ctx context.Context, answer *data.Answer) error
	ListByQuestion(ctx context.Context, questionID int64, orderKey string) ([]*data.Answer, error)
	GetAdopted(ctx context.Context, questionID int64) (*data.Answer, error)
	Adopt(ctx context.Context, questionID, answerID int64, now time.Time) error
}

// AnswerService provides the business logic for answers: posting, edits,
// acceptance and votes. Every operation takes the acting identity explicitly.
type AnswerService struct {
	answers   AnswerRepository
	questions QuestionRepository
	votes     VoteRepository
}

// NewAnswerService creates a new AnswerService.
func NewAnswerService(answers AnswerRepository, questions QuestionRepository, votes VoteRepository) *AnswerService {
	return &AnswerService{
		answers:   answers,
		questions: questions,
		votes:     votes,
	}
}

func validateAnswer(content string) error {
	ve := newValidationError()
	if strings.TrimSpace(content) == "" {
		ve.add("content", "Content cannot be blank.")
	}
	if ve.ok() {
		return nil
	}
	return ve
}

// Create validates and persists a new answer by the identity to the
// question. The parent question's answer counter is incremented atomically
// by the repository.
func (s *AnswerService) Create(ctx context.Context, identity string, questionID int64, content string) (*data.Answer, error) {
	if _, err := s.questions.GetByID(ctx, questionID); err != nil {
		return nil, err
	}
	if err := validateAnswer(content); err != nil {
		return nil, err
	}

	now := time.Now()
	answer := &data.Answer{
		QuestionID: questionID,
		AuthorID:   identity,
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.answers.Create(ctx, answer); err != nil {
		return nil, err
	}
	return answer, nil
}

// Get loads an answer without side effects.
func (s *AnswerService) Get(ctx context.Context, id int64) (*data.Answer, error) {
	return s.answers.GetByID(ctx, id)
}

// Update rewrites an answer's content. Only the recorded author may edit.
func (s *AnswerService) Update(ctx context.Context, identity string, id int64, content string) (*data.Answer, error) {
	answer, err := s.answers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.Can(identity, auth.ActionUpdate, answer) {
		return nil, ErrForbidden
	}
	if err := validateAnswer(content); err != nil {
		return nil, err
	}

	answer.Content = content
	answer.UpdatedAt = time.Now()
	if err := s.answers.Update(ctx, answer); err != nil {
		return nil, err
	}
	return answer, nil
}

// Accept marks the answer as the accepted one for its question and resolves
// the question. Only the question's author may accept. Accepting a different
// answer on an already resolved question replaces the earlier acceptance;
// the repository clears it in the same transaction.
func (s *AnswerService) Accept(ctx context.Context, identity string, answerID int64) (*data.Answer, error) {
	answer, err := s.answers.GetByID(ctx, answerID)
	if err != nil {
		return nil, err
	}
	question, err := s.questions.GetByID(ctx, answer.QuestionID)
	if err != nil {
		return nil, err
	}
	if !auth.Can(identity, auth.ActionAccept, question) {
		return nil, ErrForbidden
	}

	now := time.Now()
	if err := s.answers.Adopt(ctx, question.ID, answer.ID, now); err != nil {
		return nil, err
	}
	answer.AdoptedAt = &now
	return answer, nil
}

// Vote records the identity's vote on the answer. A repeated vote on the
// same answer is a no-op and reports false.
func (s *AnswerService) Vote(ctx context.Context, identity string, answerID int64) (bool, error) {
	if _, err := s.answers.GetByID(ctx, answerID); err != nil {
		return false, err
	}
	return s.votes.VoteAnswer(ctx, identity, answerID, time.Now())
}
