package service

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"go-qa-app/internal/auth"
	"go-qa-app/internal/data"
)

// QuestionRepository defines the interface for database operations on questions.
type QuestionRepository interface {
	Create(ctx context.Context, question *data.Question) error
	GetByID(ctx context.Context, id int64) (*data.Question, error)
	Update(ctx context.Context, question *data.Question) error
	Delete(ctx context.Context, id int64) error
	IncrementViews(ctx context.Context, id int64) error
	List(ctx context.Context, params data.QuestionListParams) ([]*data.Question, int64, error)
	ListByTag(ctx context.Context, tag string, page, limit int) ([]*data.Question, int64, error)
	ListPublished(ctx context.Context) ([]*data.Question, error)
}

// TagRepository defines the interface for tag operations.
type TagRepository interface {
	GetOrCreate(ctx context.Context, name string) (*data.Tag, error)
	ForQuestion(ctx context.Context, questionID int64) ([]*data.Tag, error)
	ReplaceForQuestion(ctx context.Context, questionID int64, tagIDs []int64) error
	ListAll(ctx context.Context) ([]*data.Tag, error)
}

// FavoriteRepository defines the interface for the bookmark relation.
type FavoriteRepository interface {
	Exists(ctx context.Context, userID string, questionID int64) (bool, error)
	Toggle(ctx context.Context, userID string, questionID int64, now time.Time) (bool, error)
	CountForQuestion(ctx context.Context, questionID int64) (int64, error)
}

// VoteRepository defines the interface for vote operations.
type VoteRepository interface {
	VoteQuestion(ctx context.Context, userID string, questionID int64, now time.Time) (bool, error)
	VoteAnswer(ctx context.Context, userID string, answerID int64, now time.Time) (bool, error)
}

// BodyRenderer converts raw Markdown into sanitized HTML.
type BodyRenderer interface {
	Render(raw string) (template.HTML, error)
}

// BodyCache stores rendered bodies between requests.
type BodyCache interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
}

// QuestionInput carries the user-supplied fields of a question form.
type QuestionInput struct {
	Title   string
	Content string
	Tags    []string
}

// QuestionView bundles everything the question page shows.
type QuestionView struct {
	Question      *data.Question
	Answers       []*data.Answer
	AdoptedAnswer *data.Answer
	OrderKey      string
	Favorited     bool
}

// QuestionPage is one page of a question listing.
type QuestionPage struct {
	Questions []*data.Question
	Total     int64
	Page      int
	Limit     int
	OrderKey  string
}

// QuestionService provides the business logic for questions: creation,
// edits, the view flow with its counters, favorites and votes. Every
// operation takes the acting identity explicitly.
type QuestionService struct {
	questions QuestionRepository
	answers   AnswerRepository
	tags      TagRepository
	favorites FavoriteRepository
	votes     VoteRepository
	renderer  BodyRenderer
	cache     BodyCache
	cacheTTL  time.Duration
	pageSize  int
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questions QuestionRepository, answers AnswerRepository, tags TagRepository, favorites FavoriteRepository, votes VoteRepository, renderer BodyRenderer, cache BodyCache, cacheTTL time.Duration, pageSize int) *QuestionService {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &QuestionService{
		questions: questions,
		answers:   answers,
		tags:      tags,
		favorites: favorites,
		votes:     votes,
		renderer:  renderer,
		cache:     cache,
		cacheTTL:  cacheTTL,
		pageSize:  pageSize,
	}
}

// normalizeTags trims and drops empty tag values, deduplicating while
// preserving order.
func normalizeTags(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		name := strings.ToLower(strings.TrimSpace(v))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// validateQuestion checks the form constraints shared by create and update.
func validateQuestion(in QuestionInput, tags []string) error {
	ve := newValidationError()
	if strings.TrimSpace(in.Title) == "" {
		ve.add("title", "Title cannot be blank.")
	}
	if strings.TrimSpace(in.Content) == "" {
		ve.add("content", "Content cannot be blank.")
	}
	if len(tags) == 0 {
		ve.add("tags", "At least one tag is required.")
	}
	if ve.ok() {
		return nil
	}
	return ve
}

// Create validates and persists a new question for the identity, derives its
// slug from the title, and attaches the tags. The entity is fully validated
// before the first repository call, so a rejected form leaves no partial
// writes behind.
func (s *QuestionService) Create(ctx context.Context, identity string, in QuestionInput) (*data.Question, error) {
	tags := normalizeTags(in.Tags)
	if err := validateQuestion(in, tags); err != nil {
		return nil, err
	}

	now := time.Now()
	question := &data.Question{
		AuthorID:  identity,
		Title:     strings.TrimSpace(in.Title),
		Slug:      Slugify(in.Title),
		Content:   in.Content,
		Status:    data.StatusPublished,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.questions.Create(ctx, question); err != nil {
		return nil, err
	}

	if err := s.attachTags(ctx, question, tags); err != nil {
		return nil, err
	}
	return question, nil
}

// Update re-validates and rewrites a question. Only the recorded author may
// edit; the slug is kept as derived at creation.
func (s *QuestionService) Update(ctx context.Context, identity string, id int64, in QuestionInput) (*data.Question, error) {
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.Can(identity, auth.ActionUpdate, question) {
		return nil, ErrForbidden
	}

	tags := normalizeTags(in.Tags)
	if err := validateQuestion(in, tags); err != nil {
		return nil, err
	}

	question.Title = strings.TrimSpace(in.Title)
	question.Content = in.Content
	question.UpdatedAt = time.Now()
	if err := s.questions.Update(ctx, question); err != nil {
		return nil, err
	}

	if err := s.attachTags(ctx, question, tags); err != nil {
		return nil, err
	}
	return question, nil
}

// attachTags resolves tag names to rows and swaps the question's tag set.
func (s *QuestionService) attachTags(ctx context.Context, question *data.Question, names []string) error {
	ids := make([]int64, 0, len(names))
	tags := make([]*data.Tag, 0, len(names))
	for _, name := range names {
		tag, err := s.tags.GetOrCreate(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to resolve tag %q: %w", name, err)
		}
		ids = append(ids, tag.ID)
		tags = append(tags, tag)
	}
	if err := s.tags.ReplaceForQuestion(ctx, question.ID, ids); err != nil {
		return err
	}
	question.Tags = tags
	return nil
}

// Get loads a question without side effects, with its tags. Used by the edit
// form and the action endpoints.
func (s *QuestionService) Get(ctx context.Context, id int64) (*data.Question, error) {
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tags, err := s.tags.ForQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	question.Tags = tags
	return question, nil
}

// View loads the question page: the question with rendered body and tags,
// its answers in the requested order, the adopted answer when resolved, and
// the favorite state for the viewer. A view by anyone but the author bumps
// the view counter by exactly one.
func (s *QuestionService) View(ctx context.Context, identity string, id int64, answersOrder string) (*QuestionView, error) {
	question, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if question.AuthorID != identity {
		if err := s.questions.IncrementViews(ctx, id); err != nil {
			return nil, err
		}
		question.ViewCount++
	}

	if question.Body, err = s.renderBody(questionBodyKey(question), question.Content); err != nil {
		return nil, err
	}

	vw := &QuestionView{Question: question}

	if question.IsResolved() {
		adopted, err := s.answersForAdoption(ctx, id)
		if err != nil {
			return nil, err
		}
		vw.AdoptedAnswer = adopted
	}

	_, orderKey := data.AnswerOrderClause(answersOrder)
	answers, err := s.answers.ListByQuestion(ctx, id, orderKey)
	if err != nil {
		return nil, err
	}
	for _, a := range answers {
		if a.Body, err = s.renderBody(answerBodyKey(a), a.Content); err != nil {
			return nil, err
		}
	}
	vw.Answers = answers
	vw.OrderKey = orderKey

	if question.FavoriteCount, err = s.favorites.CountForQuestion(ctx, id); err != nil {
		return nil, err
	}
	if identity != "" && identity != auth.Anonymous {
		if vw.Favorited, err = s.favorites.Exists(ctx, identity, id); err != nil {
			return nil, err
		}
	}
	return vw, nil
}

// Delete removes a question after the ownership check. Tag links are
// detached first so frequencies stay accurate; answers, favorites and votes
// go with the store's cascade.
func (s *QuestionService) Delete(ctx context.Context, identity string, id int64) error {
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.Can(identity, auth.ActionDelete, question) {
		return ErrForbidden
	}
	if err := s.tags.ReplaceForQuestion(ctx, id, nil); err != nil {
		return err
	}
	return s.questions.Delete(ctx, id)
}

// List returns a page of questions for the index, tags attached.
func (s *QuestionService) List(ctx context.Context, params data.QuestionListParams) (*QuestionPage, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit <= 0 {
		params.Limit = s.pageSize
	}
	_, orderKey := data.QuestionOrderClause(params.Order)
	params.Order = orderKey

	questions, total, err := s.questions.List(ctx, params)
	if err != nil {
		return nil, err
	}
	if err := s.loadTags(ctx, questions); err != nil {
		return nil, err
	}
	return &QuestionPage{Questions: questions, Total: total, Page: params.Page, Limit: params.Limit, OrderKey: orderKey}, nil
}

// ListByTag returns a page of published questions carrying the tag.
func (s *QuestionService) ListByTag(ctx context.Context, tag string, page, limit int) (*QuestionPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = s.pageSize
	}
	questions, total, err := s.questions.ListByTag(ctx, tag, page, limit)
	if err != nil {
		return nil, err
	}
	if err := s.loadTags(ctx, questions); err != nil {
		return nil, err
	}
	return &QuestionPage{Questions: questions, Total: total, Page: page, Limit: limit, OrderKey: "new"}, nil
}

// ListForSitemap returns every publicly visible question.
func (s *QuestionService) ListForSitemap(ctx context.Context) ([]*data.Question, error) {
	return s.questions.ListPublished(ctx)
}

// ToggleFavorite flips the bookmark state of the question for the identity
// and reports the resulting state.
func (s *QuestionService) ToggleFavorite(ctx context.Context, identity string, id int64) (bool, error) {
	if _, err := s.questions.GetByID(ctx, id); err != nil {
		return false, err
	}
	return s.favorites.Toggle(ctx, identity, id, time.Now())
}

// Vote records the identity's vote on the question. A repeated vote on the
// same question is a no-op and reports false.
func (s *QuestionService) Vote(ctx context.Context, identity string, id int64) (bool, error) {
	if _, err := s.questions.GetByID(ctx, id); err != nil {
		return false, err
	}
	return s.votes.VoteQuestion(ctx, identity, id, time.Now())
}

// ListTags returns every tag with its usage frequency.
func (s *QuestionService) ListTags(ctx context.Context) ([]*data.Tag, error) {
	return s.tags.ListAll(ctx)
}

func (s *QuestionService) loadTags(ctx context.Context, questions []*data.Question) error {
	for _, q := range questions {
		tags, err := s.tags.ForQuestion(ctx, q.ID)
		if err != nil {
			return err
		}
		q.Tags = tags
	}
	return nil
}

func (s *QuestionService) answersForAdoption(ctx context.Context, questionID int64) (*data.Answer, error) {
	adopted, err := s.answers.GetAdopted(ctx, questionID)
	if err != nil {
		if errors.Is(err, data.ErrNotFound) {
			// Resolved without a surviving adopted answer; show nothing.
			return nil, nil
		}
		return nil, err
	}
	if adopted.Body, err = s.renderBody(answerBodyKey(adopted), adopted.Content); err != nil {
		return nil, err
	}
	return adopted, nil
}

// renderBody returns the sanitized HTML for raw content, consulting the
// cache first. Keys embed the update timestamp, so edits miss the stale
// entry and the TTL eventually evicts it.
func (s *QuestionService) renderBody(key, raw string) (template.HTML, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(key); err == nil && cached != nil {
			return template.HTML(cached), nil
		}
	}
	body, err := s.renderer.Render(raw)
	if err != nil {
		return "", fmt.Errorf("failed to render body: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Set(key, []byte(body), s.cacheTTL)
	}
	return body, nil
}

func questionBodyKey(q *data.Question) string {
	return fmt.Sprintf("body:q:%d:%d", q.ID, q.UpdatedAt.Unix())
}

func answerBodyKey(a *data.Answer) string {
	return fmt.Sprintf("body:a:%d:%d", a.ID, a.UpdatedAt.Unix())
}
