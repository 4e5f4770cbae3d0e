package executor

import (
	"time"

	"go.uber.org/zap"

	"github.com/caffeineduck/termite/term"
)

// ErrorMode selects how a failed run is reported.
type ErrorMode int

const (
	// ErrorModeRaise reports failures through Result.Error.
	ErrorModeRaise ErrorMode = iota
	// ErrorModeInBand reports failures as an ErrorPair in Result.Value and
	// leaves Result.Error nil.
	ErrorModeInBand
)

// Option configures a single run.
type Option func(*runConfig)

type runConfig struct {
	timeout         time.Duration
	maxSteps        uint64
	errorMode       ErrorMode
	policy          term.SymbolPolicy
	preserveSymbols bool
	entry           *EntryPoint
	filename        string
}

func defaultRunConfig() runConfig {
	return runConfig{
		timeout:  30 * time.Second,
		policy:   term.PolicyStrict,
		filename: "<snippet>",
	}
}

// WithTimeout sets the maximum execution time. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(c *runConfig) {
		c.timeout = d
	}
}

// WithMaxSteps bounds the number of interpreter steps. Zero disables the
// limit.
func WithMaxSteps(n uint64) Option {
	return func(c *runConfig) {
		c.maxSteps = n
	}
}

// WithErrorMode selects how failures are reported.
func WithErrorMode(m ErrorMode) Option {
	return func(c *runConfig) {
		c.errorMode = m
	}
}

// WithSymbolPolicy sets the policy for struct field names in the result.
// The default is term.PolicyStrict.
func WithSymbolPolicy(p term.SymbolPolicy) Option {
	return func(c *runConfig) {
		c.policy = p
	}
}

// WithPreserveSymbols makes Symbols in the bindings reach the snippet as
// atom values instead of str.
func WithPreserveSymbols() Option {
	return func(c *runConfig) {
		c.preserveSymbols = true
	}
}

// WithEntryPoint invokes a method on an instance of the type defined by the
// snippet's last statement. It takes precedence over entry point bindings.
func WithEntryPoint(ep EntryPoint) Option {
	return func(c *runConfig) {
		c.entry = &ep
	}
}

// WithFilename sets the file name used in positions and tracebacks.
func WithFilename(name string) Option {
	return func(c *runConfig) {
		c.filename = name
	}
}

// ParseErrorMode parses "raise" or "inband".
func ParseErrorMode(s string) (ErrorMode, bool) {
	switch s {
	case "raise", "":
		return ErrorModeRaise, true
	case "inband", "in_band", "in-band":
		return ErrorModeInBand, true
	}
	return 0, false
}

// ExecutorOption configures the Executor at creation time.
type ExecutorOption func(*executorConfig)

type executorConfig struct {
	logger  *zap.Logger
	metrics *Metrics
}

func defaultExecutorConfig() executorConfig {
	return executorConfig{
		logger: zap.NewNop(),
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) ExecutorOption {
	return func(c *executorConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records every run into m.
func WithMetrics(m *Metrics) ExecutorOption {
	return func(c *executorConfig) {
		c.metrics = m
	}
}
