package requirelist

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	next  int64
	lists map[int64]RequireList
}

// NewMemoryRepository builds an in-memory require list store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{next: 1, lists: make(map[int64]RequireList)}
}

func (r *memoryRepository) Create(_ context.Context, list *RequireList) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list.No = r.next
	r.next++
	r.lists[list.No] = *list
	return nil
}

func (r *memoryRepository) Get(_ context.Context, no int64) (RequireList, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list, ok := r.lists[no]
	if !ok {
		return RequireList{}, ErrNotFound
	}
	return list, nil
}
