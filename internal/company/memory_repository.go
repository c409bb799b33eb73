package company

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu        sync.RWMutex
	companies map[int64]Company
}

// NewMemoryRepository builds an in-memory company store for testing.
func NewMemoryRepository(seed ...Company) Repository {
	repo := &memoryRepository{companies: make(map[int64]Company)}
	for _, company := range seed {
		repo.companies[company.No] = company
	}
	return repo
}

func (r *memoryRepository) Get(_ context.Context, no int64) (Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	company, ok := r.companies[no]
	if !ok {
		return Company{}, ErrNotFound
	}
	return company, nil
}

func (r *memoryRepository) Update(_ context.Context, company Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[company.No]; !ok {
		return ErrNotFound
	}
	r.companies[company.No] = company
	return nil
}
