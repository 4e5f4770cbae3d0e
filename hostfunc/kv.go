package hostfunc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// KVBackend stores the raw (JSON encoded) values of a KV.
type KVBackend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Len(ctx context.Context) (int, error)
}

// KVConfig holds the limits enforced by a KV.
type KVConfig struct {
	MaxKeySize   int
	MaxValueSize int
	MaxEntries   int
}

// DefaultKVConfig returns the default limits.
func DefaultKVConfig() KVConfig {
	return KVConfig{
		MaxKeySize:   256,
		MaxValueSize: 1 << 20,
		MaxEntries:   10000,
	}
}

// KVOption adjusts the limits of a KV.
type KVOption func(*KVConfig)

// WithMaxKeySize sets the maximum key size in bytes.
func WithMaxKeySize(n int) KVOption {
	return func(c *KVConfig) { c.MaxKeySize = n }
}

// WithMaxValueSize sets the maximum encoded value size in bytes.
func WithMaxValueSize(n int) KVOption {
	return func(c *KVConfig) { c.MaxValueSize = n }
}

// WithMaxEntries sets the maximum number of keys.
func WithMaxEntries(n int) KVOption {
	return func(c *KVConfig) { c.MaxEntries = n }
}

// KV exposes a KVBackend as host functions. Values are any JSON
// representable data.
type KV struct {
	backend KVBackend
	cfg     KVConfig
}

// NewKV returns a KV over backend.
func NewKV(backend KVBackend, opts ...KVOption) *KV {
	cfg := DefaultKVConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &KV{backend: backend, cfg: cfg}
}

// Register adds kv_get, kv_set, kv_delete and kv_keys to r.
func (kv *KV) Register(r *Registry) {
	r.Register("kv_get", kv.Get)
	r.Register("kv_set", kv.Set)
	r.Register("kv_delete", kv.Delete)
	r.Register("kv_keys", kv.Keys)
}

func (kv *KV) checkKey(key string) error {
	if key == "" {
		return errors.New("key required")
	}
	if kv.cfg.MaxKeySize > 0 && len(key) > kv.cfg.MaxKeySize {
		return fmt.Errorf("key exceeds %d bytes", kv.cfg.MaxKeySize)
	}
	return nil
}

// Get returns the value under "key", or "default" (nil when absent).
func (kv *KV) Get(ctx context.Context, args map[string]any) (any, error) {
	var req KVGetRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	if err := kv.checkKey(req.Key); err != nil {
		return nil, err
	}
	raw, found, err := kv.backend.Get(ctx, req.Key)
	if err != nil {
		return nil, err
	}
	if !found {
		return req.Default, nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("corrupt value for %q: %w", req.Key, err)
	}
	return v, nil
}

// Set stores "value" under "key".
func (kv *KV) Set(ctx context.Context, args map[string]any) (any, error) {
	var req KVSetRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	if err := kv.checkKey(req.Key); err != nil {
		return nil, err
	}
	if _, ok := args["value"]; !ok {
		return nil, errors.New("value required")
	}
	data, err := json.Marshal(req.Value)
	if err != nil {
		return nil, fmt.Errorf("value not storable: %w", err)
	}
	if kv.cfg.MaxValueSize > 0 && len(data) > kv.cfg.MaxValueSize {
		return nil, fmt.Errorf("value exceeds %d bytes", kv.cfg.MaxValueSize)
	}
	if kv.cfg.MaxEntries > 0 {
		_, exists, err := kv.backend.Get(ctx, req.Key)
		if err != nil {
			return nil, err
		}
		if !exists {
			n, err := kv.backend.Len(ctx)
			if err != nil {
				return nil, err
			}
			if n >= kv.cfg.MaxEntries {
				return nil, fmt.Errorf("store full (%d entries)", kv.cfg.MaxEntries)
			}
		}
	}
	if err := kv.backend.Set(ctx, req.Key, string(data)); err != nil {
		return nil, err
	}
	return "ok", nil
}

// Delete removes "key".
func (kv *KV) Delete(ctx context.Context, args map[string]any) (any, error) {
	var req KVDeleteRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	if err := kv.checkKey(req.Key); err != nil {
		return nil, err
	}
	if err := kv.backend.Delete(ctx, req.Key); err != nil {
		return nil, err
	}
	return "ok", nil
}

// Keys returns the sorted keys, restricted to those starting with "prefix"
// when given.
func (kv *KV) Keys(ctx context.Context, args map[string]any) (any, error) {
	var req KVKeysRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	keys, err := kv.backend.Keys(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	out := make([]any, 0, len(keys))
	for _, k := range keys {
		if strings.HasPrefix(k, req.Prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

// MemoryBackend keeps values in process memory.
type MemoryBackend struct {
	data map[string]string
	mu   sync.RWMutex
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]string)}
}

func (s *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	val, ok := s.data[key]
	s.mu.RUnlock()
	return val, ok, nil
}

func (s *MemoryBackend) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
	return nil
}

func (s *MemoryBackend) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryBackend) Keys(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *MemoryBackend) Len(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data), nil
}
