package hostfunc

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
)

func newRedisBackend(t *testing.T, opts ...RedisOption) (*RedisBackend, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	b := NewRedisBackendFromClient(client, opts...)
	t.Cleanup(func() { b.Close() })
	return b, mr
}

func TestRedisKVRoundTrip(t *testing.T) {
	b, mr := newRedisBackend(t)
	kv := NewKV(b)
	ctx := context.Background()

	if _, err := kv.Set(ctx, map[string]any{"key": "greeting", "value": "hi"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, err := kv.Get(ctx, map[string]any{"key": "greeting"})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if val != "hi" {
		t.Errorf("expected hi, got %v", val)
	}

	raw, err := mr.Get("termite:kv:v:greeting")
	if err != nil {
		t.Fatalf("raw get: %v", err)
	}
	if raw != `"hi"` {
		t.Errorf("expected JSON encoded value, got %s", raw)
	}
}

func TestRedisKVKeysAndDelete(t *testing.T) {
	b, _ := newRedisBackend(t, WithRedisPrefix("test:"))
	kv := NewKV(b)
	ctx := context.Background()

	kv.Set(ctx, map[string]any{"key": "b", "value": 1})
	kv.Set(ctx, map[string]any{"key": "a", "value": 2})

	keys, err := kv.Keys(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if got := fmt.Sprint(keys); got != "[a b]" {
		t.Errorf("expected [a b], got %s", got)
	}

	kv.Delete(ctx, map[string]any{"key": "a"})
	n, err := b.Len(ctx)
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 entry, got %d", n)
	}
}

func TestRedisKVTTL(t *testing.T) {
	b, mr := newRedisBackend(t, WithRedisTTL(time.Minute))
	kv := NewKV(b)
	ctx := context.Background()

	kv.Set(ctx, map[string]any{"key": "temp", "value": true})
	mr.FastForward(2 * time.Minute)

	val, err := kv.Get(ctx, map[string]any{"key": "temp"})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if val != nil {
		t.Errorf("expected expired value, got %v", val)
	}
	keys, _ := kv.Keys(ctx, map[string]any{})
	if len(keys.([]any)) != 0 {
		t.Errorf("expected expired key to leave the index, got %v", keys)
	}
}

func TestRedisKVMaxEntries(t *testing.T) {
	b, _ := newRedisBackend(t)
	kv := NewKV(b, WithMaxEntries(1))
	ctx := context.Background()

	if _, err := kv.Set(ctx, map[string]any{"key": "a", "value": 1}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := kv.Set(ctx, map[string]any{"key": "b", "value": 1}); err == nil {
		t.Error("expected store full error")
	}
}
