package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffeineduck/termite/hostfunc"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "termite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "python", cfg.Language)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
language: starlark
timeout: 5s
max_steps: 100000
error_mode: inband
symbol_policy: permissive
preserve_symbols: true
log_level: debug
handlers_dir: ./handlers
kv:
  backend: redis
  redis_addr: localhost:6379
  prefix: "app:"
  ttl: 1h
fs:
  mounts:
    - /data:./in:ro
  max_file_size: 1024
http:
  allowed_hosts: [api.example.com]
  timeout: 2s
serve:
  addr: ":9090"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "starlark", cfg.Language)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, uint64(100000), cfg.MaxSteps)
	assert.Equal(t, "inband", cfg.ErrorMode)
	assert.Equal(t, "permissive", cfg.SymbolPolicy)
	assert.True(t, cfg.PreserveSymbols)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "./handlers", cfg.HandlersDir)
	assert.Equal(t, KV{Backend: "redis", RedisAddr: "localhost:6379", Prefix: "app:", TTL: time.Hour}, cfg.KV)
	assert.Equal(t, FS{Mounts: []string{"/data:./in:ro"}, MaxFileSize: 1024}, cfg.FS)
	assert.Equal(t, []string{"api.example.com"}, cfg.HTTP.AllowedHosts)
	assert.Equal(t, 2*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, ":9090", cfg.Serve.Addr)
	// untouched keys keep their defaults
	assert.Equal(t, 15*time.Minute, cfg.Serve.SessionTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "colour: blue\n"},
		{"bad duration", "timeout: soon\n"},
		{"bad yaml", "timeout: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"error mode", func(c *Config) { c.ErrorMode = "shout" }},
		{"symbol policy", func(c *Config) { c.SymbolPolicy = "lenient" }},
		{"kv backend", func(c *Config) { c.KV.Backend = "etcd" }},
		{"redis addr", func(c *Config) { c.KV.Backend = "redis" }},
		{"mount spec", func(c *Config) { c.FS.Mounts = []string{"/data"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRunOptions(t *testing.T) {
	cfg := Default()
	opts, err := cfg.RunOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 4)

	cfg.PreserveSymbols = true
	opts, err = cfg.RunOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 5)

	cfg.SymbolPolicy = "nope"
	_, err = cfg.RunOptions()
	assert.Error(t, err)
}

func TestKVBackend(t *testing.T) {
	cfg := Default()
	b, err := cfg.KVBackend()
	require.NoError(t, err)
	assert.IsType(t, &hostfunc.MemoryBackend{}, b)

	cfg.KV = KV{Backend: "redis", RedisAddr: "localhost:6379"}
	b, err = cfg.KVBackend()
	require.NoError(t, err)
	rb, ok := b.(*hostfunc.RedisBackend)
	require.True(t, ok)
	rb.Close()

	cfg.KV = KV{Backend: "redis"}
	_, err = cfg.KVBackend()
	assert.Error(t, err)
}

func TestRegisterHostFunctions(t *testing.T) {
	r := hostfunc.NewRegistry()
	fs, err := Default().Register(r)
	require.NoError(t, err)
	assert.Nil(t, fs)
	assert.Empty(t, r.List())

	cfg := Default()
	cfg.FS.Mounts = []string{"/data:" + t.TempDir() + ":rw"}
	cfg.HTTP.AllowedHosts = []string{"example.com"}
	r = hostfunc.NewRegistry()
	fs, err = cfg.Register(r)
	require.NoError(t, err)
	require.NotNil(t, fs)
	defer fs.Close()
	assert.Contains(t, r.List(), "fs_read")
	assert.Contains(t, r.List(), "http_get")

	cfg.FS.Mounts = []string{"/data:" + filepath.Join(t.TempDir(), "missing") + ":ro"}
	_, err = cfg.Register(hostfunc.NewRegistry())
	assert.Error(t, err)
}
