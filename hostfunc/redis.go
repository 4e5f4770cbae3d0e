package hostfunc

import (
	"context"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// RedisBackend keeps values in Redis. Keys live under a prefix and are
// tracked in an index set so listing never scans the keyspace.
type RedisBackend struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisBackend.
type RedisOption func(*RedisBackend)

// WithRedisPrefix sets the key prefix. The default is "termite:kv:".
func WithRedisPrefix(prefix string) RedisOption {
	return func(b *RedisBackend) { b.prefix = prefix }
}

// WithRedisTTL expires values after ttl. Zero keeps them forever.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(b *RedisBackend) { b.ttl = ttl }
}

// NewRedisBackend connects to the server at addr.
func NewRedisBackend(addr, password string, db int, opts ...RedisOption) *RedisBackend {
	return NewRedisBackendFromClient(backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewRedisBackendFromClient uses an existing client.
func NewRedisBackendFromClient(client *backend.Client, opts ...RedisOption) *RedisBackend {
	b := &RedisBackend{client: client, prefix: "termite:kv:"}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *RedisBackend) key(k string) string { return b.prefix + "v:" + k }

func (b *RedisBackend) indexKey() string { return b.prefix + "index" }

func (b *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := b.client.Get(ctx, b.key(key)).Result()
	if errors.Is(err, backend.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

func (b *RedisBackend) Set(ctx context.Context, key, value string) error {
	pipe := b.client.TxPipeline()
	pipe.Set(ctx, b.key(key), value, b.ttl)
	pipe.SAdd(ctx, b.indexKey(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	pipe := b.client.TxPipeline()
	pipe.Del(ctx, b.key(key))
	pipe.SRem(ctx, b.indexKey(), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// Keys returns the indexed keys whose value still exists; expired keys are
// dropped from the index on the way.
func (b *RedisBackend) Keys(ctx context.Context) ([]string, error) {
	members, err := b.client.SMembers(ctx, b.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis keys: %w", err)
	}
	if b.ttl == 0 || len(members) == 0 {
		return members, nil
	}
	keys := make([]string, 0, len(members))
	for _, m := range members {
		n, err := b.client.Exists(ctx, b.key(m)).Result()
		if err != nil {
			return nil, fmt.Errorf("redis keys: %w", err)
		}
		if n == 0 {
			b.client.SRem(ctx, b.indexKey(), m)
			continue
		}
		keys = append(keys, m)
	}
	return keys, nil
}

func (b *RedisBackend) Len(ctx context.Context) (int, error) {
	if b.ttl > 0 {
		keys, err := b.Keys(ctx)
		return len(keys), err
	}
	n, err := b.client.SCard(ctx, b.indexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("redis len: %w", err)
	}
	return int(n), nil
}

// Close closes the client.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
