package executor

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/caffeineduck/termite/hostfunc"
	"github.com/caffeineduck/termite/term"
)

// Result holds the value and metadata of one run.
type Result struct {
	Value    term.Term
	Output   string
	Duration time.Duration
	Error    error
}

// Executor runs snippets. Each run builds a fresh environment, so an
// Executor is safe for concurrent use.
type Executor struct {
	registry *hostfunc.Registry
	logger   *zap.Logger
	metrics  *Metrics
}

// New creates an Executor whose snippets can call the functions of
// registry through the host module. registry may be nil.
func New(registry *hostfunc.Registry, opts ...ExecutorOption) (*Executor, error) {
	cfg := defaultExecutorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if registry == nil {
		registry = hostfunc.NewRegistry()
	}
	return &Executor{
		registry: registry,
		logger:   cfg.logger,
		metrics:  cfg.metrics,
	}, nil
}

// Registry returns the host function registry.
func (e *Executor) Registry() *hostfunc.Registry { return e.registry }

// Run executes code in lang with bindings installed as globals. bindings is
// a *term.Mapping, term.Nil or nil.
//
// The statements before the last one run for their effects. The last
// statement decides the value: an expression is evaluated and encoded, a def
// combined with an entry point is instantiated and invoked, anything else
// yields Nil.
func (e *Executor) Run(ctx context.Context, lang Language, code string, bindings term.Term, opts ...Option) Result {
	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return e.run(ctx, lang, cfg, func(ctx context.Context, out *strings.Builder) (term.Term, error) {
		return e.execute(ctx, lang, code, bindings, cfg, out)
	})
}

type runFunc func(ctx context.Context, out *strings.Builder) (term.Term, error)

// run applies the timeout, then reports the outcome of fn according to the
// error mode.
func (e *Executor) run(ctx context.Context, lang Language, cfg runConfig, fn runFunc) Result {
	start := time.Now()

	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	var output strings.Builder
	value, err := fn(ctx, &output)

	result := Result{
		Value:    value,
		Output:   output.String(),
		Duration: time.Since(start),
	}

	outcome := "ok"
	if err != nil {
		var xe *Error
		if !errors.As(err, &xe) {
			xe = &Error{Kind: KindRuntime, Category: CategoryEval, Detail: err.Error(), Cause: err}
		}
		outcome = string(xe.Kind)
		e.logger.Debug("run failed",
			zap.String("lang", lang.Name()),
			zap.Duration("duration", result.Duration),
			zap.String("kind", string(xe.Kind)),
			zap.String("category", xe.Category),
			zap.Error(xe))
		if cfg.errorMode == ErrorModeInBand {
			result.Value = xe.Term()
		} else {
			result.Value = nil
			result.Error = xe
		}
	} else {
		e.logger.Debug("run finished",
			zap.String("lang", lang.Name()),
			zap.Duration("duration", result.Duration))
	}
	e.metrics.observe(lang.Name(), outcome, result.Duration)

	return result
}

// Execute is Run returning only the value and the error.
func (e *Executor) Execute(ctx context.Context, lang Language, code string, bindings term.Term, opts ...Option) (term.Term, error) {
	r := e.Run(ctx, lang, code, bindings, opts...)
	return r.Value, r.Error
}

// Close flushes the logger.
func (e *Executor) Close() error {
	_ = e.logger.Sync()
	return nil
}
