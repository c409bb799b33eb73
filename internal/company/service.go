package company

import (
	"context"
	"errors"
)

// ErrInvalidName indicates an empty or oversized company name.
var ErrInvalidName = errors.New("company name must be between 1 and 100 characters")

// Service manages tenant companies.
type Service struct {
	repo Repository
}

// NewService creates a company service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get fetches a company by number.
func (s *Service) Get(ctx context.Context, no int64) (Company, error) {
	return s.repo.Get(ctx, no)
}

// Rename validates and stores a new company name.
func (s *Service) Rename(ctx context.Context, no int64, name string) (Company, error) {
	if n := len([]rune(name)); n < 1 || n > 100 {
		return Company{}, ErrInvalidName
	}
	company, err := s.repo.Get(ctx, no)
	if err != nil {
		return Company{}, err
	}
	company.Name = name
	if err := s.repo.Update(ctx, company); err != nil {
		return Company{}, err
	}
	return company, nil
}
