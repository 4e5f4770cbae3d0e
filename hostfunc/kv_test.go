package hostfunc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func newMemoryKV(opts ...KVOption) *KV {
	return NewKV(NewMemoryBackend(), opts...)
}

func TestKVSetGet(t *testing.T) {
	kv := newMemoryKV()
	ctx := context.Background()

	_, err := kv.Set(ctx, map[string]any{"key": "foo", "value": "bar"})
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, err := kv.Get(ctx, map[string]any{"key": "foo"})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if val != "bar" {
		t.Errorf("expected bar, got %v", val)
	}
}

func TestKVStructuredValue(t *testing.T) {
	kv := newMemoryKV()
	ctx := context.Background()

	_, err := kv.Set(ctx, map[string]any{"key": "cfg", "value": map[string]any{"n": int64(3), "tags": []any{"a"}}})
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, err := kv.Get(ctx, map[string]any{"key": "cfg"})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	m, ok := val.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", val)
	}
	if m["n"] != json.Number("3") {
		t.Errorf("expected n=3, got %v", m["n"])
	}
}

func TestKVGetDefault(t *testing.T) {
	kv := newMemoryKV()
	ctx := context.Background()

	val, err := kv.Get(ctx, map[string]any{"key": "missing", "default": "fallback"})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if val != "fallback" {
		t.Errorf("expected fallback, got %v", val)
	}
}

func TestKVGetMissing(t *testing.T) {
	kv := newMemoryKV()
	ctx := context.Background()

	val, err := kv.Get(ctx, map[string]any{"key": "missing"})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if val != nil {
		t.Errorf("expected nil, got %v", val)
	}
}

func TestKVDelete(t *testing.T) {
	kv := newMemoryKV()
	ctx := context.Background()

	kv.Set(ctx, map[string]any{"key": "foo", "value": "bar"})
	kv.Delete(ctx, map[string]any{"key": "foo"})

	val, _ := kv.Get(ctx, map[string]any{"key": "foo"})
	if val != nil {
		t.Errorf("expected nil after delete, got %v", val)
	}
}

func TestKVKeys(t *testing.T) {
	kv := newMemoryKV()
	ctx := context.Background()

	for _, k := range []string{"user:2", "user:1", "order:1"} {
		kv.Set(ctx, map[string]any{"key": k, "value": 1})
	}

	keys, err := kv.Keys(ctx, map[string]any{"prefix": "user:"})
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	got := fmt.Sprint(keys)
	if got != "[user:1 user:2]" {
		t.Errorf("expected [user:1 user:2], got %s", got)
	}
}

func TestKVKeyRequired(t *testing.T) {
	kv := newMemoryKV()
	_, err := kv.Get(context.Background(), map[string]any{})
	if err == nil || err.Error() != "key required" {
		t.Errorf("expected 'key required', got %v", err)
	}
	_, err = kv.Set(context.Background(), map[string]any{"key": "k"})
	if err == nil || err.Error() != "value required" {
		t.Errorf("expected 'value required', got %v", err)
	}
}

// =============================================================================
// LIMITS
// =============================================================================

func TestKVMaxKeySize(t *testing.T) {
	kv := newMemoryKV(WithMaxKeySize(4))
	_, err := kv.Set(context.Background(), map[string]any{"key": "toolong", "value": 1})
	if err == nil || !strings.Contains(err.Error(), "key exceeds") {
		t.Errorf("expected key size error, got %v", err)
	}
}

func TestKVMaxValueSize(t *testing.T) {
	kv := newMemoryKV(WithMaxValueSize(8))
	_, err := kv.Set(context.Background(), map[string]any{"key": "k", "value": strings.Repeat("x", 32)})
	if err == nil || !strings.Contains(err.Error(), "value exceeds") {
		t.Errorf("expected value size error, got %v", err)
	}
}

func TestKVMaxEntries(t *testing.T) {
	kv := newMemoryKV(WithMaxEntries(2))
	ctx := context.Background()

	kv.Set(ctx, map[string]any{"key": "a", "value": 1})
	kv.Set(ctx, map[string]any{"key": "b", "value": 1})

	if _, err := kv.Set(ctx, map[string]any{"key": "a", "value": 2}); err != nil {
		t.Errorf("overwrite should not count against the limit: %v", err)
	}
	_, err := kv.Set(ctx, map[string]any{"key": "c", "value": 1})
	if err == nil || !strings.Contains(err.Error(), "store full") {
		t.Errorf("expected store full, got %v", err)
	}
}

func TestKVConcurrentAccess(t *testing.T) {
	kv := newMemoryKV()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i)
			kv.Set(ctx, map[string]any{"key": key, "value": i})
			kv.Get(ctx, map[string]any{"key": key})
		}(i)
	}
	wg.Wait()

	keys, _ := kv.Keys(ctx, map[string]any{})
	if n := len(keys.([]any)); n != 50 {
		t.Errorf("expected 50 keys, got %d", n)
	}
}
