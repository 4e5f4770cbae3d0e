package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/caffeineduck/termite/executor"
	"github.com/caffeineduck/termite/hostfunc"
	"github.com/caffeineduck/termite/internal/config"
	"github.com/caffeineduck/termite/internal/logging"
	"github.com/caffeineduck/termite/language/python"
	"github.com/caffeineduck/termite/language/starlark"
)

var rootCmd = &cobra.Command{
	Use:   "termite [file]",
	Short: "Run python-flavoured snippets against host terms",
	Long: `termite - evaluate snippets in an embedded Starlark interpreter and return
their last expression as a host term.

Run code from files, inline strings, or stdin. Snippets reach the host only
through the host module. Filesystem and network access stay off unless
directories are mounted with --mount or hosts are allowed with --allow-host.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runRun,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "YAML config file")
	pf.StringP("lang", "l", "", "Language: python, starlark (default: from file extension or config)")
	pf.Duration("timeout", 30*time.Second, "Execution timeout")
	pf.Uint64("max-steps", 0, "Interpreter step limit (0 = unlimited)")
	pf.String("error-mode", "raise", "Failure reporting: raise or inband")
	pf.String("symbol-policy", "strict", "Unsafe struct field names: strict or permissive")
	pf.Bool("preserve-symbols", false, "Pass symbol bindings as atoms instead of str")
	pf.String("log-level", "warn", "Log level: debug, info, warn, error")
	pf.String("kv-backend", "memory", "Key-value backend: memory or redis")
	pf.String("redis-addr", "", "Redis address for the redis key-value backend")
	pf.StringArray("mount", nil, "Mount a host directory as virtual:host:mode (mode: ro, rw, rwc)")
	pf.StringSlice("allow-host", nil, "Hosts the http_* host functions may reach")

	addRunFlags(rootCmd)
}

// loadConfig reads --config and applies the flags the user set on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("lang") {
		cfg.Language, _ = flags.GetString("lang")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps, _ = flags.GetUint64("max-steps")
	}
	if flags.Changed("error-mode") {
		cfg.ErrorMode, _ = flags.GetString("error-mode")
	}
	if flags.Changed("symbol-policy") {
		cfg.SymbolPolicy, _ = flags.GetString("symbol-policy")
	}
	if flags.Changed("preserve-symbols") {
		cfg.PreserveSymbols, _ = flags.GetBool("preserve-symbols")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("kv-backend") {
		cfg.KV.Backend, _ = flags.GetString("kv-backend")
	}
	if flags.Changed("redis-addr") {
		cfg.KV.RedisAddr, _ = flags.GetString("redis-addr")
	}
	if flags.Changed("mount") {
		mounts, _ := flags.GetStringArray("mount")
		cfg.FS.Mounts = append(cfg.FS.Mounts, mounts...)
	}
	if flags.Changed("allow-host") {
		hosts, _ := flags.GetStringSlice("allow-host")
		cfg.HTTP.AllowedHosts = append(cfg.HTTP.AllowedHosts, hosts...)
	}
	if f := flags.Lookup("handlers"); f != nil && f.Changed {
		cfg.HandlersDir = f.Value.String()
	}
	if f := flags.Lookup("addr"); f != nil && f.Changed {
		cfg.Serve.Addr = f.Value.String()
	}
	return cfg, cfg.Validate()
}

// app is everything a command needs to run snippets.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	exec     *executor.Executor
	runOpts  []executor.Option
	registry *prometheus.Registry
	kv       hostfunc.KVBackend
	fs       *hostfunc.FS
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	runOpts, err := cfg.RunOptions()
	if err != nil {
		return nil, err
	}
	kv, err := cfg.KVBackend()
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	registry := hostfunc.NewRegistry()
	hostfunc.RegisterClock(registry)
	hostfunc.NewKV(kv).Register(registry)
	fs, err := cfg.Register(registry)
	if err != nil {
		return nil, err
	}

	exec, err := executor.New(registry,
		executor.WithLogger(logger),
		executor.WithMetrics(executor.NewMetrics(reg)),
	)
	if err != nil {
		if fs != nil {
			fs.Close()
		}
		return nil, err
	}
	return &app{
		cfg:      cfg,
		logger:   logger,
		exec:     exec,
		runOpts:  runOpts,
		registry: reg,
		kv:       kv,
		fs:       fs,
	}, nil
}

// registerPackages exposes the catalog of lang through the host module.
func (a *app) registerPackages(lang executor.Language) {
	if c := lang.Packages(); c != nil {
		hostfunc.NewPkg(c).Register(a.exec.Registry())
	}
}

func (a *app) close() {
	if c, ok := a.kv.(interface{ Close() error }); ok {
		c.Close()
	}
	if a.fs != nil {
		a.fs.Close()
	}
	a.exec.Close()
}

// language picks the dialect: the explicit name, else the file extension,
// else the configured default.
func (a *app) language(cmd *cobra.Command, filename string) (executor.Language, error) {
	name := a.cfg.Language
	if !cmd.Flags().Changed("lang") && filename != "" {
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".py":
			name = "python"
		case ".star", ".bzl":
			name = "starlark"
		}
	}
	return getLanguage(name)
}

func getLanguage(name string) (executor.Language, error) {
	switch name {
	case "python", "py", "":
		return python.New(), nil
	case "starlark", "star":
		return starlark.New(), nil
	}
	return nil, fmt.Errorf("unknown language %q: use python or starlark", name)
}
