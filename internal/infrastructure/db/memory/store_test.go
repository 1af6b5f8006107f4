package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/socialfeed/gateway/internal/core/domain"
)

func TestStore_CreateIdentity_DuplicateEmail(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if _, err := s.Create(ctx, &domain.User{Email: "a@example.com", Name: "A"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := s.Create(ctx, &domain.User{Email: "A@example.com", Name: "A2"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestPostRepository_OwnershipIsFinalAuthority(t *testing.T) {
	repo := NewStore().Posts()
	ctx := context.Background()
	now := time.Now().UTC()

	p, _ := repo.Create(ctx, &domain.Post{Title: "hello", CreatorID: "alice", CreatedAt: now})

	title := "hijacked"
	if _, err := repo.Update(ctx, p.ID, domain.PostPatch{Title: &title}, "bob", now); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("update: expected ErrForbidden, got %v", err)
	}
	if _, err := repo.Delete(ctx, p.ID, "bob"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("delete: expected ErrForbidden, got %v", err)
	}

	stored, _ := repo.FindByID(ctx, p.ID)
	if stored.Title != "hello" {
		t.Fatalf("post changed by non-owner: %+v", stored)
	}
}

func TestPostRepository_UpdateReturnsPrevious(t *testing.T) {
	repo := NewStore().Posts()
	ctx := context.Background()
	now := time.Now().UTC()

	p, _ := repo.Create(ctx, &domain.Post{Title: "first", ImageURL: "images/a.png", CreatorID: "alice", CreatedAt: now})

	img := "images/b.png"
	prev, err := repo.Update(ctx, p.ID, domain.PostPatch{ImageURL: &img}, "alice", now.Add(time.Minute))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if prev.ImageURL != "images/a.png" {
		t.Errorf("expected previous image, got %q", prev.ImageURL)
	}
	stored, _ := repo.FindByID(ctx, p.ID)
	if stored.ImageURL != img || stored.Title != "first" {
		t.Errorf("patch not applied correctly: %+v", stored)
	}
}

func TestPostRepository_ListOrderingAndBounds(t *testing.T) {
	repo := NewStore().Posts()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		_, _ = repo.Create(ctx, &domain.Post{Title: string(rune('a' + i)), CreatorID: "alice", CreatedAt: base.Add(time.Duration(i) * time.Hour)})
	}

	page1, total, err := repo.List(ctx, 1, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 || len(page1) != 2 {
		t.Fatalf("expected 2 of 5, got %d of %d", len(page1), total)
	}
	if page1[0].Title != "e" || page1[1].Title != "d" {
		t.Errorf("expected newest first, got %q, %q", page1[0].Title, page1[1].Title)
	}

	page3, _, _ := repo.List(ctx, 3, 2)
	if len(page3) != 1 || page3[0].Title != "a" {
		t.Errorf("unexpected last page: %+v", page3)
	}

	beyond, total, err := repo.List(ctx, 9, 2)
	if err != nil || len(beyond) != 0 || total != 5 {
		t.Errorf("beyond range: got %d items, total %d, err %v", len(beyond), total, err)
	}
}

func TestPostRepository_CancelledContextWritesNothing(t *testing.T) {
	repo := NewStore().Posts()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := repo.Create(ctx, &domain.Post{Title: "x", CreatorID: "alice"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	_, total, _ := repo.List(context.Background(), 1, 10)
	if total != 0 {
		t.Fatalf("expected no posts, got %d", total)
	}
}
