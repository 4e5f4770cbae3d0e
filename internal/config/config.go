// Package config loads the termite configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/caffeineduck/termite/executor"
	"github.com/caffeineduck/termite/hostfunc"
	"github.com/caffeineduck/termite/term"
)

// Config holds every setting of the termite binary.
type Config struct {
	Language        string        `yaml:"language"`
	Timeout         time.Duration `yaml:"timeout"`
	MaxSteps        uint64        `yaml:"max_steps"`
	ErrorMode       string        `yaml:"error_mode"`
	SymbolPolicy    string        `yaml:"symbol_policy"`
	PreserveSymbols bool          `yaml:"preserve_symbols"`
	LogLevel        string        `yaml:"log_level"`
	HandlersDir     string        `yaml:"handlers_dir"`
	KV              KV            `yaml:"kv"`
	FS              FS            `yaml:"fs"`
	HTTP            HTTP          `yaml:"http"`
	Serve           Serve         `yaml:"serve"`
}

// KV selects the key-value host function backend.
type KV struct {
	Backend   string        `yaml:"backend"`
	RedisAddr string        `yaml:"redis_addr"`
	Prefix    string        `yaml:"prefix"`
	TTL       time.Duration `yaml:"ttl"`
}

// FS lists host directories mounted for the fs_* host functions, each as
// "virtual:host:mode".
type FS struct {
	Mounts      []string `yaml:"mounts"`
	MaxFileSize int64    `yaml:"max_file_size"`
}

// HTTP enables the http_* host functions for the listed hosts.
type HTTP struct {
	AllowedHosts []string      `yaml:"allowed_hosts"`
	MaxBodySize  int64         `yaml:"max_body_size"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Serve configures the HTTP surface.
type Serve struct {
	Addr       string        `yaml:"addr"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Language:     "python",
		Timeout:      30 * time.Second,
		ErrorMode:    "raise",
		SymbolPolicy: "strict",
		LogLevel:     "warn",
		KV: KV{
			Backend: "memory",
			Prefix:  "termite:kv:",
		},
		Serve: Serve{
			Addr:       ":8080",
			SessionTTL: 15 * time.Minute,
		},
	}
}

// Load reads the YAML file at path over the defaults. Unknown keys are an
// error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode merges YAML data into cfg.
func Decode(data []byte, cfg *Config) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "yaml",
		ErrorUnused: true,
		Result:      cfg,
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	if _, ok := executor.ParseErrorMode(c.ErrorMode); !ok {
		return fmt.Errorf("invalid error_mode %q", c.ErrorMode)
	}
	if _, err := term.ParsePolicy(c.SymbolPolicy); err != nil {
		return err
	}
	switch c.KV.Backend {
	case "", "memory":
	case "redis":
		if c.KV.RedisAddr == "" {
			return fmt.Errorf("kv.redis_addr required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid kv.backend %q", c.KV.Backend)
	}
	if _, err := c.Mounts(); err != nil {
		return err
	}
	return nil
}

// RunOptions returns the executor options the settings describe.
func (c Config) RunOptions() ([]executor.Option, error) {
	mode, ok := executor.ParseErrorMode(c.ErrorMode)
	if !ok {
		return nil, fmt.Errorf("invalid error_mode %q", c.ErrorMode)
	}
	policy, err := term.ParsePolicy(c.SymbolPolicy)
	if err != nil {
		return nil, err
	}
	opts := []executor.Option{
		executor.WithTimeout(c.Timeout),
		executor.WithMaxSteps(c.MaxSteps),
		executor.WithErrorMode(mode),
		executor.WithSymbolPolicy(policy),
	}
	if c.PreserveSymbols {
		opts = append(opts, executor.WithPreserveSymbols())
	}
	return opts, nil
}

// KVBackend builds the configured key-value backend.
func (c Config) KVBackend() (hostfunc.KVBackend, error) {
	switch c.KV.Backend {
	case "", "memory":
		return hostfunc.NewMemoryBackend(), nil
	case "redis":
		if c.KV.RedisAddr == "" {
			return nil, fmt.Errorf("kv.redis_addr required for the redis backend")
		}
		var opts []hostfunc.RedisOption
		if c.KV.Prefix != "" {
			opts = append(opts, hostfunc.WithRedisPrefix(c.KV.Prefix))
		}
		if c.KV.TTL > 0 {
			opts = append(opts, hostfunc.WithRedisTTL(c.KV.TTL))
		}
		return hostfunc.NewRedisBackend(c.KV.RedisAddr, "", 0, opts...), nil
	}
	return nil, fmt.Errorf("invalid kv.backend %q", c.KV.Backend)
}

// Mounts parses fs.mounts.
func (c Config) Mounts() ([]hostfunc.Mount, error) {
	mounts := make([]hostfunc.Mount, 0, len(c.FS.Mounts))
	for _, spec := range c.FS.Mounts {
		m, err := hostfunc.ParseMount(spec)
		if err != nil {
			return nil, fmt.Errorf("fs.mounts: %w", err)
		}
		mounts = append(mounts, m)
	}
	return mounts, nil
}

// Register adds the host functions the fs and http sections enable to r.
// The returned FS, if any, must be closed by the caller.
func (c Config) Register(r *hostfunc.Registry) (*hostfunc.FS, error) {
	var fs *hostfunc.FS
	if len(c.FS.Mounts) > 0 {
		mounts, err := c.Mounts()
		if err != nil {
			return nil, err
		}
		var opts []hostfunc.FSOption
		if c.FS.MaxFileSize > 0 {
			opts = append(opts, hostfunc.WithMaxFileSize(c.FS.MaxFileSize))
		}
		if fs, err = hostfunc.NewFS(mounts, opts...); err != nil {
			return nil, err
		}
		fs.Register(r)
	}
	if len(c.HTTP.AllowedHosts) > 0 {
		opts := []hostfunc.HTTPOption{hostfunc.WithAllowedHosts(c.HTTP.AllowedHosts...)}
		if c.HTTP.MaxBodySize > 0 {
			opts = append(opts, hostfunc.WithMaxBodySize(c.HTTP.MaxBodySize))
		}
		if c.HTTP.Timeout > 0 {
			opts = append(opts, hostfunc.WithRequestTimeout(c.HTTP.Timeout))
		}
		hostfunc.NewHTTP(opts...).Register(r)
	}
	return fs, nil
}
