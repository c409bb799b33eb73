package account

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned for an unknown email and for a wrong
	// password alike, so callers cannot probe which addresses are registered.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidName indicates a display name outside the 2-20 character bound.
	ErrInvalidName = errors.New("name must be between 2 and 20 characters")

	// ErrInvalidDepartment indicates a department name longer than 50 characters.
	ErrInvalidDepartment = errors.New("department name must be at most 50 characters")
)

// Service manages account lifecycle and authentication.
type Service struct {
	repo Repository
}

// NewService creates a new account service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate verifies an email/password pair against the directory and
// refreshes the login timestamp on success. Lookup misses and hash mismatches
// are deliberately indistinguishable.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.repo.TouchLogin(ctx, user.ID, now); err != nil {
		return User{}, err
	}
	user.LastLoginAt = now

	return user, nil
}

// Get fetches a single account.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateInput captures the mutable profile fields.
type UpdateInput struct {
	UserID         string
	Name           string
	DepartmentName string
}

// UpdateProfile validates and stores profile changes.
func (s *Service) UpdateProfile(ctx context.Context, input UpdateInput) (User, error) {
	if n := len([]rune(input.Name)); n < 2 || n > 20 {
		return User{}, ErrInvalidName
	}
	if len([]rune(input.DepartmentName)) > 50 {
		return User{}, ErrInvalidDepartment
	}

	user, err := s.repo.FindByID(ctx, input.UserID)
	if err != nil {
		return User{}, err
	}

	user.Name = input.Name
	user.DepartmentName = input.DepartmentName
	if err := s.repo.Update(ctx, user); err != nil {
		return User{}, err
	}

	return user, nil
}

// Deactivate soft-deletes the account. The row survives so the email can be
// audited, but the account disappears from lookups and membership lists.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id)
}

// ListByCompany returns active members of a company.
func (s *Service) ListByCompany(ctx context.Context, companyNo int64) ([]User, error) {
	return s.repo.ListByCompany(ctx, companyNo)
}
