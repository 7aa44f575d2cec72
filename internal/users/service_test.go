package users

import (
	"context"
	"testing"
)

func TestUpsertDefaultsToFreePlan(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if err := svc.UpsertFromAuth(context.Background(), User{ID: "google:1", Email: "jane@example.com"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	user, err := svc.GetByID(context.Background(), "google:1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if user.Plan != PlanFree {
		t.Fatalf("expected free plan, got %q", user.Plan)
	}
}

func TestUpsertPreservesPlanOnRelogin(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.UpsertFromAuth(context.Background(), User{ID: "google:1", Email: "jane@example.com"}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	repo.mu.Lock()
	user := repo.users["google:1"]
	user.Plan = PlanPro
	repo.users["google:1"] = user
	repo.mu.Unlock()

	if err := svc.UpsertFromAuth(context.Background(), User{ID: "google:1", Email: "jane@example.com", FullName: "Jane Doe"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := svc.GetByID(context.Background(), "google:1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Plan != PlanPro {
		t.Fatalf("relogin must not downgrade plan, got %q", got.Plan)
	}
	if got.FullName != "Jane Doe" {
		t.Fatalf("relogin must refresh profile fields, got %q", got.FullName)
	}
}

func TestUpsertRequiresIdentity(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if err := svc.UpsertFromAuth(context.Background(), User{Email: "jane@example.com"}); err == nil {
		t.Fatal("expected error for missing id")
	}
	if err := svc.UpsertFromAuth(context.Background(), User{ID: "google:1"}); err == nil {
		t.Fatal("expected error for missing email")
	}
}
