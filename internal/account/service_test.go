package account

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func seedUser(t *testing.T, repo Repository, email, password string) User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         "Alice",
		PasswordHash: hash,
		RoleName:     RoleUser,
		CompanyNo:    1,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create: %v", err)
	}
	return user
}

func TestAuthenticate(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	seeded := seedUser(t, repo, "a@b.com", "Secret1!")

	user, err := svc.Authenticate(ctx, "a@b.com", "Secret1!")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != seeded.ID {
		t.Fatalf("unexpected user %s", user.ID)
	}
	if user.LastLoginAt.IsZero() {
		t.Fatal("login timestamp not refreshed")
	}
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	seedUser(t, repo, "a@b.com", "Secret1!")

	_, wrongPassword := svc.Authenticate(ctx, "a@b.com", "nope")
	_, unknownEmail := svc.Authenticate(ctx, "ghost@b.com", "Secret1!")

	if !errors.Is(wrongPassword, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", wrongPassword)
	}
	if !errors.Is(unknownEmail, ErrInvalidCredentials) {
		t.Fatalf("unknown email: %v", unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatal("credential failures must not reveal which part failed")
	}
}

func TestAuthenticateSoftDeleted(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	user := seedUser(t, repo, "a@b.com", "Secret1!")
	if err := svc.Deactivate(ctx, user.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "a@b.com", "Secret1!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for deleted account, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	user := seedUser(t, repo, "a@b.com", "Secret1!")

	updated, err := svc.UpdateProfile(ctx, UpdateInput{UserID: user.ID, Name: "Bob", DepartmentName: "Growth"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Bob" || updated.DepartmentName != "Growth" {
		t.Fatalf("unexpected profile %+v", updated)
	}

	if _, err := svc.UpdateProfile(ctx, UpdateInput{UserID: user.ID, Name: "B"}); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("short name: %v", err)
	}
	if _, err := svc.UpdateProfile(ctx, UpdateInput{UserID: user.ID, Name: strings.Repeat("x", 21)}); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("long name: %v", err)
	}
	long := strings.Repeat("d", 51)
	if _, err := svc.UpdateProfile(ctx, UpdateInput{UserID: user.ID, Name: "Bob", DepartmentName: long}); !errors.Is(err, ErrInvalidDepartment) {
		t.Fatalf("long department: %v", err)
	}
}

func TestListByCompanyExcludesDeleted(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	keep := seedUser(t, repo, "keep@b.com", "Secret1!")
	gone := seedUser(t, repo, "gone@b.com", "Secret1!")
	if err := svc.Deactivate(ctx, gone.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	users, err := svc.ListByCompany(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 || users[0].ID != keep.ID {
		t.Fatalf("unexpected members %+v", users)
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	seedUser(t, repo, "a@b.com", "Secret1!")
	err := repo.Create(ctx, User{ID: uuid.NewString(), Email: "a@b.com"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}
