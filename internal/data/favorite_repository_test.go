//go:build integration

package data

import (
	"context"
	"testing"
	"time"
)

func TestFavoriteRepository_Toggle(t *testing.T) {
	db, teardown := setupDataTest(t)
	defer teardown()
	repo := NewFavoriteRepository(db)
	ctx := context.Background()

	question := createTestQuestion(t, db, "alice", "Question")

	favorited, err := repo.Toggle(ctx, "bob", question.ID, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !favorited {
		t.Error("expected first toggle to favorite")
	}

	exists, err := repo.Exists(ctx, "bob", question.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Error("expected favorite to exist after toggle")
	}

	favorited, err = repo.Toggle(ctx, "bob", question.ID, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if favorited {
		t.Error("expected second toggle to unfavorite")
	}

	exists, err = repo.Exists(ctx, "bob", question.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Error("expected favorite gone after second toggle")
	}
}

func TestFavoriteRepository_CountForQuestion(t *testing.T) {
	db, teardown := setupDataTest(t)
	defer teardown()
	repo := NewFavoriteRepository(db)
	ctx := context.Background()

	question := createTestQuestion(t, db, "alice", "Question")
	repo.Toggle(ctx, "bob", question.ID, time.Now())
	repo.Toggle(ctx, "carol", question.ID, time.Now())

	count, err := repo.CountForQuestion(ctx, question.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected count 2, got %d", count)
	}
}
