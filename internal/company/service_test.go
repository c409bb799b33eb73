package company

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRename(t *testing.T) {
	svc := NewService(NewMemoryRepository(Company{No: 1, Name: "Old Name"}))
	ctx := context.Background()

	company, err := svc.Rename(ctx, 1, "New Name")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if company.Name != "New Name" {
		t.Fatalf("unexpected name %q", company.Name)
	}

	fetched, err := svc.Get(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Name != "New Name" {
		t.Fatal("rename not persisted")
	}
}

func TestRenameValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository(Company{No: 1, Name: "Acme"}))
	ctx := context.Background()

	if _, err := svc.Rename(ctx, 1, ""); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("empty name: %v", err)
	}
	if _, err := svc.Rename(ctx, 1, strings.Repeat("x", 101)); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("oversized name: %v", err)
	}
}

func TestRenameMissingCompany(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	if _, err := svc.Rename(context.Background(), 404, "Anything"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
