package account

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]User // keyed by ID
	roles map[string]Role // keyed by name
}

// NewMemoryRepository builds an in-memory account store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		users: make(map[string]User),
		roles: make(map[string]Role),
	}
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email && !existing.Deleted {
			return ErrEmailTaken
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Email == email && !user.Deleted {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok || user.Deleted {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *memoryRepository) Update(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[user.ID]
	if !ok || existing.Deleted {
		return ErrNotFound
	}
	existing.Name = user.Name
	existing.DepartmentName = user.DepartmentName
	r.users[user.ID] = existing
	return nil
}

func (r *memoryRepository) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok || user.Deleted {
		return ErrNotFound
	}
	user.Deleted = true
	r.users[id] = user
	return nil
}

func (r *memoryRepository) ListByCompany(_ context.Context, companyNo int64) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var users []User
	for _, user := range r.users {
		if user.CompanyNo == companyNo && !user.Deleted {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (r *memoryRepository) TouchLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok || user.Deleted {
		return ErrNotFound
	}
	user.LastLoginAt = at
	r.users[id] = user
	return nil
}

func (r *memoryRepository) EnsureRole(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[name]; !ok {
		r.roles[name] = Role{ID: name, Name: name}
	}
	return nil
}
