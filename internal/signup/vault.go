package signup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrKeyAbsent indicates the key never existed or its TTL has lapsed. The
// two cases are indistinguishable on purpose: every verification gate treats
// an absent key as "not satisfied".
var ErrKeyAbsent = errors.New("key absent")

// Vault is the TTL key-value contract backing verification sessions. Each
// key carries its own expiration; there are no transactions across keys.
type Vault interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetNX stores the value only when the key is absent and reports whether
	// the write happened. Used as an atomic duplicate-send guard.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// RedisVault implements Vault on a Redis client.
type RedisVault struct {
	client *redis.Client
}

// NewRedisVault wraps a connected Redis client.
func NewRedisVault(client *redis.Client) *RedisVault {
	return &RedisVault{client: client}
}

// Set stores the value with the given TTL.
func (v *RedisVault) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := v.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("vault set %s: %w", key, err)
	}
	return nil
}

// SetNX reserves the key atomically.
func (v *RedisVault) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	ok, err := v.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("vault setnx %s: %w", key, err)
	}
	return ok, nil
}

// Get fetches the value, mapping Redis misses to ErrKeyAbsent.
func (v *RedisVault) Get(ctx context.Context, key string) (string, error) {
	value, err := v.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrKeyAbsent
		}
		return "", fmt.Errorf("vault get %s: %w", key, err)
	}
	return value, nil
}

// Del removes the keys. Deleting an absent key is a no-op, not an error.
func (v *RedisVault) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := v.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("vault del: %w", err)
	}
	return nil
}
