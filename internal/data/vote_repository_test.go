//go:build integration

package data

import (
	"context"
	"testing"
	"time"
)

func TestVoteRepository_VoteQuestion_OncePerUser(t *testing.T) {
	db, teardown := setupDataTest(t)
	defer teardown()
	repo := NewVoteRepository(db)
	questionRepo := NewSQLQuestionRepository(db)
	ctx := context.Background()

	question := createTestQuestion(t, db, "alice", "Question")

	counted, err := repo.VoteQuestion(ctx, "bob", question.ID, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !counted {
		t.Error("expected first vote to count")
	}

	counted, err = repo.VoteQuestion(ctx, "bob", question.ID, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counted {
		t.Error("expected repeated vote to be a no-op")
	}

	found, err := questionRepo.GetByID(ctx, question.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.VoteCount != 1 {
		t.Errorf("expected vote count 1, got %d", found.VoteCount)
	}
}

func TestVoteRepository_VoteQuestion_DistinctUsers(t *testing.T) {
	db, teardown := setupDataTest(t)
	defer teardown()
	repo := NewVoteRepository(db)
	questionRepo := NewSQLQuestionRepository(db)
	ctx := context.Background()

	question := createTestQuestion(t, db, "alice", "Question")
	repo.VoteQuestion(ctx, "bob", question.ID, time.Now())
	repo.VoteQuestion(ctx, "carol", question.ID, time.Now())

	found, err := questionRepo.GetByID(ctx, question.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.VoteCount != 2 {
		t.Errorf("expected vote count 2, got %d", found.VoteCount)
	}
}

func TestVoteRepository_VoteAnswer_OncePerUser(t *testing.T) {
	db, teardown := setupDataTest(t)
	defer teardown()
	repo := NewVoteRepository(db)
	answerRepo := NewSQLAnswerRepository(db)
	ctx := context.Background()

	question := createTestQuestion(t, db, "alice", "Question")
	answer := createTestAnswer(t, db, question.ID, "bob", "Answer")

	counted, err := repo.VoteAnswer(ctx, "carol", answer.ID, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !counted {
		t.Error("expected first vote to count")
	}

	counted, err = repo.VoteAnswer(ctx, "carol", answer.ID, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counted {
		t.Error("expected repeated vote to be a no-op")
	}

	found, err := answerRepo.GetByID(ctx, answer.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.VoteCount != 1 {
		t.Errorf("expected vote count 1, got %d", found.VoteCount)
	}

	// Voting on the answer leaves room for a separate vote on its question.
	counted, err = repo.VoteQuestion(ctx, "carol", question.ID, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !counted {
		t.Error("expected question vote to count independently of answer vote")
	}
}
