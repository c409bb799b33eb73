package signup

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryVault is an in-process Vault used when no Redis is configured (dev
// mode). TTLs are honored lazily on read.
type MemoryVault struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

// NewMemoryVault builds an empty in-memory vault.
func NewMemoryVault() *MemoryVault {
	return &MemoryVault{entries: make(map[string]memoryEntry)}
}

// Set stores the value with the given TTL.
func (v *MemoryVault) Set(_ context.Context, key, value string, ttl time.Duration) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

// SetNX stores the value only when the key is absent or expired.
func (v *MemoryVault) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if entry, ok := v.entries[key]; ok && time.Now().Before(entry.expiresAt) {
		return false, nil
	}
	v.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return true, nil
}

// Get fetches the value, treating expired entries as absent.
func (v *MemoryVault) Get(_ context.Context, key string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	entry, ok := v.entries[key]
	if !ok {
		return "", ErrKeyAbsent
	}
	if time.Now().After(entry.expiresAt) {
		delete(v.entries, key)
		return "", ErrKeyAbsent
	}
	return entry.value, nil
}

// Del removes the keys; absent keys are ignored.
func (v *MemoryVault) Del(_ context.Context, keys ...string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, key := range keys {
		delete(v.entries, key)
	}
	return nil
}
