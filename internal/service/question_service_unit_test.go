//go:build unit

package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go-qa-app/internal/cache"
	"go-qa-app/internal/config"
	"go-qa-app/internal/data"
	"go-qa-app/internal/render"
)

// newTestCache creates a new in-memory cache for testing.
func newTestCache(t *testing.T) (*cache.Cache, func()) {
	t.Helper()
	cfg := config.CacheConfig{
		FilePath: "file::memory:",
	}
	c, err := cache.New(cfg)
	if err != nil {
		t.Fatalf("failed to create test cache: %v", err)
	}
	teardown := func() {
		c.Close()
	}
	return c, teardown
}

// mockQuestionRepository is an in-memory implementation of QuestionRepository.
type mockQuestionRepository struct {
	questions      map[int64]*data.Question
	nextID         int64
	createCalled   bool
	updateCalled   bool
	deleteCalled   bool
	incrementViews int
	lastListParams data.QuestionListParams
	errToReturn    error
}

var _ QuestionRepository = (*mockQuestionRepository)(nil)

func newMockQuestionRepository() *mockQuestionRepository {
	return &mockQuestionRepository{questions: make(map[int64]*data.Question)}
}

func (m *mockQuestionRepository) Create(ctx context.Context, question *data.Question) error {
	m.createCalled = true
	if m.errToReturn != nil {
		return m.errToReturn
	}
	m.nextID++
	question.ID = m.nextID
	stored := *question
	m.questions[question.ID] = &stored
	return nil
}

func (m *mockQuestionRepository) GetByID(ctx context.Context, id int64) (*data.Question, error) {
	if m.errToReturn != nil {
		return nil, m.errToReturn
	}
	q, ok := m.questions[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	copied := *q
	return &copied, nil
}

func (m *mockQuestionRepository) Update(ctx context.Context, question *data.Question) error {
	m.updateCalled = true
	if m.errToReturn != nil {
		return m.errToReturn
	}
	stored, ok := m.questions[question.ID]
	if !ok {
		return data.ErrNotFound
	}
	stored.Title = question.Title
	stored.Content = question.Content
	stored.Status = question.Status
	stored.UpdatedAt = question.UpdatedAt
	return nil
}

func (m *mockQuestionRepository) Delete(ctx context.Context, id int64) error {
	m.deleteCalled = true
	if _, ok := m.questions[id]; !ok {
		return data.ErrNotFound
	}
	delete(m.questions, id)
	return nil
}

func (m *mockQuestionRepository) IncrementViews(ctx context.Context, id int64) error {
	m.incrementViews++
	if q, ok := m.questions[id]; ok {
		q.ViewCount++
	}
	return nil
}

func (m *mockQuestionRepository) List(ctx context.Context, params data.QuestionListParams) ([]*data.Question, int64, error) {
	m.lastListParams = params
	out := []*data.Question{}
	for _, q := range m.questions {
		copied := *q
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (m *mockQuestionRepository) ListByTag(ctx context.Context, tag string, page, limit int) ([]*data.Question, int64, error) {
	return []*data.Question{}, 0, nil
}

func (m *mockQuestionRepository) ListPublished(ctx context.Context) ([]*data.Question, error) {
	out := []*data.Question{}
	for _, q := range m.questions {
		if !q.IsDraft() {
			copied := *q
			out = append(out, &copied)
		}
	}
	return out, nil
}

// mockAnswerRepository is an in-memory implementation of AnswerRepository.
type mockAnswerRepository struct {
	answers     map[int64]*data.Answer
	nextID      int64
	adoptCalled bool
}

var _ AnswerRepository = (*mockAnswerRepository)(nil)

func newMockAnswerRepository() *mockAnswerRepository {
	return &mockAnswerRepository{answers: make(map[int64]*data.Answer)}
}

func (m *mockAnswerRepository) Create(ctx context.Context, answer *data.Answer) error {
	m.nextID++
	answer.ID = m.nextID
	stored := *answer
	m.answers[answer.ID] = &stored
	return nil
}

func (m *mockAnswerRepository) GetByID(ctx context.Context, id int64) (*data.Answer, error) {
	a, ok := m.answers[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *mockAnswerRepository) Update(ctx context.Context, answer *data.Answer) error {
	stored, ok := m.answers[answer.ID]
	if !ok {
		return data.ErrNotFound
	}
	stored.Content = answer.Content
	stored.UpdatedAt = answer.UpdatedAt
	return nil
}

func (m *mockAnswerRepository) ListByQuestion(ctx context.Context, questionID int64, orderKey string) ([]*data.Answer, error) {
	out := []*data.Answer{}
	for _, a := range m.answers {
		if a.QuestionID == questionID {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockAnswerRepository) GetAdopted(ctx context.Context, questionID int64) (*data.Answer, error) {
	for _, a := range m.answers {
		if a.QuestionID == questionID && a.AdoptedAt != nil {
			copied := *a
			return &copied, nil
		}
	}
	return nil, data.ErrNotFound
}

func (m *mockAnswerRepository) Adopt(ctx context.Context, questionID, answerID int64, now time.Time) error {
	m.adoptCalled = true
	target, ok := m.answers[answerID]
	if !ok || target.QuestionID != questionID {
		return data.ErrNotFound
	}
	for _, a := range m.answers {
		if a.QuestionID == questionID {
			a.AdoptedAt = nil
		}
	}
	target.AdoptedAt = &now
	return nil
}

// mockTagRepository is an in-memory implementation of TagRepository.
type mockTagRepository struct {
	byName       map[string]*data.Tag
	byID         map[int64]*data.Tag
	links        map[int64][]int64
	nextID       int64
	replaceCalls int
	lastReplaced []int64
}

var _ TagRepository = (*mockTagRepository)(nil)

func newMockTagRepository() *mockTagRepository {
	return &mockTagRepository{
		byName: make(map[string]*data.Tag),
		byID:   make(map[int64]*data.Tag),
		links:  make(map[int64][]int64),
	}
}

func (m *mockTagRepository) GetOrCreate(ctx context.Context, name string) (*data.Tag, error) {
	if tag, ok := m.byName[name]; ok {
		return tag, nil
	}
	m.nextID++
	tag := &data.Tag{ID: m.nextID, Name: name}
	m.byName[name] = tag
	m.byID[tag.ID] = tag
	return tag, nil
}

func (m *mockTagRepository) ForQuestion(ctx context.Context, questionID int64) ([]*data.Tag, error) {
	tags := []*data.Tag{}
	for _, id := range m.links[questionID] {
		tags = append(tags, m.byID[id])
	}
	return tags, nil
}

func (m *mockTagRepository) ReplaceForQuestion(ctx context.Context, questionID int64, tagIDs []int64) error {
	m.replaceCalls++
	m.lastReplaced = tagIDs
	m.links[questionID] = tagIDs
	return nil
}

func (m *mockTagRepository) ListAll(ctx context.Context) ([]*data.Tag, error) {
	tags := []*data.Tag{}
	for _, tag := range m.byID {
		tags = append(tags, tag)
	}
	return tags, nil
}

// mockFavoriteRepository is an in-memory implementation of FavoriteRepository.
type mockFavoriteRepository struct {
	favorites map[string]bool
}

var _ FavoriteRepository = (*mockFavoriteRepository)(nil)

func newMockFavoriteRepository() *mockFavoriteRepository {
	return &mockFavoriteRepository{favorites: make(map[string]bool)}
}

func favoriteKey(userID string, questionID int64) string {
	return fmt.Sprintf("%s:%d", userID, questionID)
}

func (m *mockFavoriteRepository) Exists(ctx context.Context, userID string, questionID int64) (bool, error) {
	return m.favorites[favoriteKey(userID, questionID)], nil
}

func (m *mockFavoriteRepository) Toggle(ctx context.Context, userID string, questionID int64, now time.Time) (bool, error) {
	key := favoriteKey(userID, questionID)
	if m.favorites[key] {
		delete(m.favorites, key)
		return false, nil
	}
	m.favorites[key] = true
	return true, nil
}

func (m *mockFavoriteRepository) CountForQuestion(ctx context.Context, questionID int64) (int64, error) {
	var count int64
	suffix := fmt.Sprintf(":%d", questionID)
	for key := range m.favorites {
		if strings.HasSuffix(key, suffix) {
			count++
		}
	}
	return count, nil
}

// mockVoteRepository is an in-memory implementation of VoteRepository.
type mockVoteRepository struct {
	questionVotes map[string]bool
	answerVotes   map[string]bool
}

var _ VoteRepository = (*mockVoteRepository)(nil)

func newMockVoteRepository() *mockVoteRepository {
	return &mockVoteRepository{
		questionVotes: make(map[string]bool),
		answerVotes:   make(map[string]bool),
	}
}

func (m *mockVoteRepository) VoteQuestion(ctx context.Context, userID string, questionID int64, now time.Time) (bool, error) {
	key := fmt.Sprintf("%s:%d", userID, questionID)
	if m.questionVotes[key] {
		return false, nil
	}
	m.questionVotes[key] = true
	return true, nil
}

func (m *mockVoteRepository) VoteAnswer(ctx context.Context, userID string, answerID int64, now time.Time) (bool, error) {
	key := fmt.Sprintf("%s:%d", userID, answerID)
	if m.answerVotes[key] {
		return false, nil
	}
	m.answerVotes[key] = true
	return true, nil
}

// testDeps bundles the fakes behind a question service under test.
type testDeps struct {
	questions *mockQuestionRepository
	answers   *mockAnswerRepository
	tags      *mockTagRepository
	favorites *mockFavoriteRepository
	votes     *mockVoteRepository
}

func newTestQuestionService(t *testing.T) (*QuestionService, *testDeps, func()) {
	t.Helper()
	deps := &testDeps{
		questions: newMockQuestionRepository(),
		answers:   newMockAnswerRepository(),
		tags:      newMockTagRepository(),
		favorites: newMockFavoriteRepository(),
		votes:     newMockVoteRepository(),
	}
	testCache, teardown := newTestCache(t)
	svc := NewQuestionService(deps.questions, deps.answers, deps.tags, deps.favorites, deps.votes, render.New(), testCache, time.Minute, 10)
	return svc, deps, teardown
}

func TestQuestionService_Create(t *testing.T) {
	svc, deps, teardown := newTestQuestionService(t)
	defer teardown()
	ctx := context.Background()

	question, err := svc.Create(ctx, "alice", QuestionInput{
		Title:   "How do I test HTTP handlers?",
		Content: "Some **markdown** body.",
		Tags:    []string{"Go", " testing ", "go"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if question.ID == 0 {
		t.Error("expected non-zero id")
	}
	if question.AuthorID != "alice" {
		t.Errorf("expected author 'alice', got '%s'", question.AuthorID)
	}
	if question.Slug != "how-do-i-test-http-handlers" {
		t.Errorf("unexpected slug '%s'", question.Slug)
	}
	if question.Status != data.StatusPublished {
		t.Errorf("expected published status, got %d", question.Status)
	}
	// "Go" and "go" collapse to one tag after normalization.
	if len(question.Tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(question.Tags))
	}
	if question.Tags[0].Name != "go" || question.Tags[1].Name != "testing" {
		t.Errorf("unexpected tag names: %v, %v", question.Tags[0].Name, question.Tags[1].Name)
	}
	if deps.tags.replaceCalls != 1 || len(deps.tags.lastReplaced) != 2 {
		t.Errorf("expected one replace call with 2 tag ids, got %d calls with %v", deps.tags.replaceCalls, deps.tags.lastReplaced)
	}
}

func TestQuestionService_Create_Validation(t *testing.T) {
	svc, deps, teardown := newTestQuestionService(t)
	defer teardown()
	ctx := context.Background()

	_, err := svc.Create(ctx, "alice", QuestionInput{Title: "  ", Content: "", Tags: []string{" ", ""}})
	ve := AsValidationError(err)
	if ve == nil {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"title", "content", "tags"} {
		if _, ok := ve.Fields[field]; !ok {
			t.Errorf("expected a message for field %q", field)
		}
	}
	// Validation failures must not leave partial writes behind.
	if deps.questions.createCalled {
		t.Error("expected no repository call on validation failure")
	}
	if deps.tags.replaceCalls != 0 {
		t.Error("expected no tag writes on validation failure")
	}
}

func TestQuestionService_Update(t *testing.T) {
	t.Run("author can edit, slug stays", func(t *testing.T) {
		svc, deps, teardown := newTestQuestionService(t)
		defer teardown()
		ctx := context.Background()

		created, err := svc.Create(ctx, "alice", QuestionInput{Title: "Original title", Content: "body", Tags: []string{"go"}})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		updated, err := svc.Update(ctx, "alice", created.ID, QuestionInput{Title: "Better title", Content: "new body", Tags: []string{"go", "http"}})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if updated.Title != "Better title" {
			t.Errorf("expected updated title, got '%s'", updated.Title)
		}
		if updated.Slug != "original-title" {
			t.Errorf("expected slug to stay 'original-title', got '%s'", updated.Slug)
		}
		if len(deps.tags.lastReplaced) != 2 {
			t.Errorf("expected tag set swapped to 2 tags, got %v", deps.tags.lastReplaced)
		}
	})

	t.Run("non-author is forbidden", func(t *testing.T) {
		svc, deps, teardown := newTestQuestionService(t)
		defer teardown()
		ctx := context.Background()

		created, err := svc.Create(ctx, "alice", QuestionInput{Title: "Title", Content: "body", Tags: []string{"go"}})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		deps.questions.updateCalled = false

		_, err = svc.Update(ctx, "mallory", created.ID, QuestionInput{Title: "Hijacked", Content: "x", Tags: []string{"go"}})
		if err != ErrForbidden {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if deps.questions.updateCalled {
			t.Error("expected no update call for forbidden edit")
		}
	})
}

func TestQuestionService_View(t *testing.T) {
	t.Run("stranger view bumps the counter", func(t *testing.T) {
		svc, deps, teardown := newTestQuestionService(t)
		defer teardown()
		ctx := context.Background()

		created, err := svc.Create(ctx, "alice", QuestionInput{Title: "Title", Content: "Some **markdown** here.", Tags: []string{"go"}})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		vw, err := svc.View(ctx, "bob", created.ID, "")
		if err != nil {
			t.Fatalf("View failed: %v", err)
		}
		if deps.questions.incrementViews != 1 {
			t.Errorf("expected 1 increment, got %d", deps.questions.incrementViews)
		}
		if vw.Question.ViewCount != 1 {
			t.Errorf("expected view count 1 in the result, got %d", vw.Question.ViewCount)
		}
		if !strings.Contains(string(vw.Question.Body), "<strong>") {
			t.Errorf("expected rendered markdown body, got %q", vw.Question.Body)
		}
		if vw.OrderKey != "supports" {
			t.Errorf("expected default answer order 'supports', got '%s'", vw.OrderKey)
		}
	})

	t.Run("author view does not count", func(t *testing.T) {
		svc, deps, teardown := newTestQuestionService(t)
		defer teardown()
		ctx := context.Background()

		created, err := svc.Create(ctx, "alice", QuestionInput{Title: "Title", Content: "body", Tags: []string{"go"}})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		vw, err := svc.View(ctx, "alice", created.ID, "")
		if err != nil {
			t.Fatalf("View failed: %v", err)
		}
		if deps.questions.incrementViews != 0 {
			t.Errorf("expected no increment for the author, got %d", deps.questions.incrementViews)
		}
		if vw.Question.ViewCount != 0 {
			t.Errorf("expected view count 0, got %d", vw.Question.ViewCount)
		}
	})

	t.Run("favorite state for the viewer", func(t *testing.T) {
		svc, _, teardown := newTestQuestionService(t)
		defer teardown()
		ctx := context.Background()

		created, err := svc.Create(ctx, "alice", QuestionInput{Title: "Title", Content: "body", Tags: []string{"go"}})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if _, err := svc.ToggleFavorite(ctx, "bob", created.ID); err != nil {
			t.Fatalf("ToggleFavorite failed: %v", err)
		}

		vw, err := svc.View(ctx, "bob", created.ID, "")
		if err != nil {
			t.Fatalf("View failed: %v", err)
		}
		if !vw.Favorited {
			t.Error("expected Favorited true for the bookmarking viewer")
		}
		if vw.Question.FavoriteCount != 1 {
			t.Errorf("expected favorite count 1, got %d", vw.Question.FavoriteCount)
		}

		other, err := svc.View(ctx, "carol", created.ID, "")
		if err != nil {
			t.Fatalf("View failed: %v", err)
		}
		if other.Favorited {
			t.Error("expected Favorited false for another viewer")
		}
	})
}

func TestQuestionService_Delete(t *testing.T) {
	t.Run("author delete detaches tags first", func(t *testing.T) {
		svc, deps, teardown := newTestQuestionService(t)
		defer teardown()
		ctx := context.Background()

		created, err := svc.Create(ctx, "alice", QuestionInput{Title: "Title", Content: "body", Tags: []string{"go"}})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if err := svc.Delete(ctx, "alice", created.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if !deps.questions.deleteCalled {
			t.Error("expected repository delete")
		}
		if len(deps.tags.lastReplaced) != 0 {
			t.Errorf("expected tags detached before delete, got %v", deps.tags.lastReplaced)
		}
		if _, err := svc.Get(ctx, created.ID); err != data.ErrNotFound {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("non-author is forbidden", func(t *testing.T) {
		svc, deps, teardown := newTestQuestionService(t)
		defer teardown()
		ctx := context.Background()

		created, err := svc.Create(ctx, "alice", QuestionInput{Title: "Title", Content: "body", Tags: []string{"go"}})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if err := svc.Delete(ctx, "mallory", created.ID); err != ErrForbidden {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if deps.questions.deleteCalled {
			t.Error("expected no delete call for forbidden request")
		}
	})
}

func TestQuestionService_List_Normalization(t *testing.T) {
	svc, deps, teardown := newTestQuestionService(t)
	defer teardown()
	ctx := context.Background()

	page, err := svc.List(ctx, data.QuestionListParams{Page: 0, Limit: 0, Order: "bogus"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.Page != 1 {
		t.Errorf("expected page normalized to 1, got %d", page.Page)
	}
	if page.Limit != 10 {
		t.Errorf("expected limit defaulted to the configured page size, got %d", page.Limit)
	}
	if page.OrderKey != "new" {
		t.Errorf("expected order fallback 'new', got '%s'", page.OrderKey)
	}
	if deps.questions.lastListParams.Order != "new" {
		t.Errorf("expected normalized order passed to the repository, got '%s'", deps.questions.lastListParams.Order)
	}
}

func TestQuestionService_Vote(t *testing.T) {
	svc, _, teardown := newTestQuestionService(t)
	defer teardown()
	ctx := context.Background()

	created, err := svc.Create(ctx, "alice", QuestionInput{Title: "Title", Content: "body", Tags: []string{"go"}})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	counted, err := svc.Vote(ctx, "bob", created.ID)
	if err != nil {
		t.Fatalf("Vote failed: %v", err)
	}
	if !counted {
		t.Error("expected first vote to count")
	}

	counted, err = svc.Vote(ctx, "bob", created.ID)
	if err != nil {
		t.Fatalf("Vote failed: %v", err)
	}
	if counted {
		t.Error("expected repeated vote to be a no-op")
	}

	if _, err := svc.Vote(ctx, "bob", 999); err != data.ErrNotFound {
		t.Errorf("expected ErrNotFound voting on a missing question, got %v", err)
	}
}

func TestQuestionService_ToggleFavorite_MissingQuestion(t *testing.T) {
	svc, _, teardown := newTestQuestionService(t)
	defer teardown()

	if _, err := svc.ToggleFavorite(context.Background(), "bob", 999); err != data.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
