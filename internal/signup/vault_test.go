package signup

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestVault(t *testing.T) (*RedisVault, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisVault(client), mr
}

func TestVaultGetAbsent(t *testing.T) {
	vault, _ := newTestVault(t)
	ctx := context.Background()

	if _, err := vault.Get(ctx, "missing"); !errors.Is(err, ErrKeyAbsent) {
		t.Fatalf("expected ErrKeyAbsent, got %v", err)
	}
}

func TestVaultTTLExpiry(t *testing.T) {
	vault, mr := newTestVault(t)
	ctx := context.Background()

	if err := vault.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, err := vault.Get(ctx, "k")
	if err != nil || value != "v" {
		t.Fatalf("get before expiry: %q, %v", value, err)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := vault.Get(ctx, "k"); !errors.Is(err, ErrKeyAbsent) {
		t.Fatalf("expected ErrKeyAbsent after TTL, got %v", err)
	}
}

func TestVaultSetNX(t *testing.T) {
	vault, mr := newTestVault(t)
	ctx := context.Background()

	ok, err := vault.SetNX(ctx, "guard", "1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first setnx: %v, %v", ok, err)
	}
	ok, err = vault.SetNX(ctx, "guard", "1", time.Minute)
	if err != nil {
		t.Fatalf("second setnx: %v", err)
	}
	if ok {
		t.Fatal("second setnx should not acquire")
	}

	// The guard frees up once its TTL lapses.
	mr.FastForward(2 * time.Minute)
	ok, err = vault.SetNX(ctx, "guard", "1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("setnx after expiry: %v, %v", ok, err)
	}
}

func TestVaultDelAbsentKey(t *testing.T) {
	vault, _ := newTestVault(t)
	ctx := context.Background()

	if err := vault.Del(ctx, "never-existed", "also-missing"); err != nil {
		t.Fatalf("deleting absent keys should be a no-op, got %v", err)
	}
}
