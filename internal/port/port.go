// Package port serves the executor to an Erlang port opened with
// {packet, 4} and binary mode.
//
// Each request is {call, Id, Fun, Args}. The reply is {ok, Id, Result} or
// {error, Id, Detail}. Requests are answered in order.
package port

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/caffeineduck/termite/executor"
	"github.com/caffeineduck/termite/handler"
	"github.com/caffeineduck/termite/packages"
	"github.com/caffeineduck/termite/term"
	"github.com/caffeineduck/termite/term/etf"
)

// Functions a request may name.
const (
	FunExecute         = "execute"
	FunListPackages    = "list_packages"
	FunCheckPackage    = "check_package"
	FunImportPackage   = "import_package"
	FunDescribeHandler = "describe_handler"
)

const handlerFilename = "<handler>"

// Port answers requests read from a stream.
type Port struct {
	exec     *executor.Executor
	lang     executor.Language
	catalog  *packages.Catalog
	runOpts  []executor.Option
	logger   *zap.Logger
	maxFrame int
}

// Option configures a Port.
type Option func(*Port)

// WithRunOptions applies opts to every execute call.
func WithRunOptions(opts ...executor.Option) Option {
	return func(p *Port) { p.runOpts = append(p.runOpts, opts...) }
}

// WithCatalog answers the package functions from c instead of the
// language's catalog.
func WithCatalog(c *packages.Catalog) Option {
	return func(p *Port) { p.catalog = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Port) { p.logger = l }
}

// WithMaxFrame limits the size of a request frame.
func WithMaxFrame(n int) Option {
	return func(p *Port) { p.maxFrame = n }
}

// New creates a Port running snippets in lang.
func New(exec *executor.Executor, lang executor.Language, opts ...Option) *Port {
	p := &Port{
		exec:     exec,
		lang:     lang,
		logger:   zap.NewNop(),
		maxFrame: etf.DefaultMaxFrame,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.catalog == nil {
		p.catalog = lang.Packages()
	}
	if p.catalog == nil {
		p.catalog = packages.New()
	}
	return p
}

// Serve answers requests from r on w until r ends or ctx is done. A clean
// end of input returns nil.
func (p *Port) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	dec := etf.NewDecoder(r)
	dec.SetMaxFrame(p.maxFrame)
	enc := etf.NewEncoder(w)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		req, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("port: read request: %w", err)
		}
		if err := enc.Encode(p.Handle(ctx, req)); err != nil {
			return fmt.Errorf("port: write reply: %w", err)
		}
	}
}

// Handle answers one request term.
func (p *Port) Handle(ctx context.Context, req term.Term) etf.Tuple {
	seq, ok := req.(term.Sequence)
	if !ok || len(seq) != 4 || term.KeyText(seq[0]) != "call" {
		p.logger.Warn("malformed request", zap.Stringer("request", req))
		return reply(term.Nil{}, nil, fmt.Errorf("malformed request: expected {call, Id, Fun, Args}"))
	}
	id, fun := seq[1], term.KeyText(seq[2])
	args, ok := seq[3].(term.Sequence)
	if !ok {
		return reply(id, nil, fmt.Errorf("%s: arguments must be a list", fun))
	}

	p.logger.Debug("request", zap.String("fun", fun), zap.Int("args", len(args)))
	result, err := p.call(ctx, fun, args)
	if err != nil {
		p.logger.Debug("request failed", zap.String("fun", fun), zap.Error(err))
	}
	return reply(id, result, err)
}

func reply(id, result term.Term, err error) etf.Tuple {
	if err != nil {
		return etf.Tuple{etf.Atom("error"), id, term.Bytes(err.Error())}
	}
	return etf.Tuple{etf.Atom("ok"), id, result}
}

func (p *Port) call(ctx context.Context, fun string, args term.Sequence) (term.Term, error) {
	switch fun {
	case FunExecute:
		if len(args) < 1 || len(args) > 2 {
			return nil, fmt.Errorf("execute: expected (Code, Bindings)")
		}
		code, err := text(args[0])
		if err != nil {
			return nil, fmt.Errorf("execute: code %w", err)
		}
		var bindings term.Term
		if len(args) == 2 {
			bindings = args[1]
		}
		return p.exec.Execute(ctx, p.lang, code, bindings, p.runOpts...)

	case FunListPackages:
		return p.catalog.List(), nil

	case FunCheckPackage, FunImportPackage:
		if len(args) != 1 {
			return nil, fmt.Errorf("%s: expected (Name)", fun)
		}
		name, err := text(args[0])
		if err != nil {
			return nil, fmt.Errorf("%s: name %w", fun, err)
		}
		if fun == FunCheckPackage {
			return p.catalog.Check(name), nil
		}
		return p.catalog.Import(name), nil

	case FunDescribeHandler:
		if len(args) != 1 {
			return nil, fmt.Errorf("describe_handler: expected (Code)")
		}
		code, err := text(args[0])
		if err != nil {
			return nil, fmt.Errorf("describe_handler: code %w", err)
		}
		return handler.Describe(ctx, p.exec, p.lang, handlerFilename, code)
	}
	return nil, fmt.Errorf("unknown function %q", fun)
}

func text(t term.Term) (string, error) {
	switch t := t.(type) {
	case term.Bytes:
		return string(t), nil
	case term.Symbol:
		return t.Name(), nil
	}
	return "", fmt.Errorf("must be a binary, got %s", t)
}
