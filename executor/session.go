package executor

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.starlark.net/starlark"

	"github.com/caffeineduck/termite/term"
)

var (
	ErrSessionClosed = errors.New("session closed")
	ErrSessionBusy   = errors.New("session busy")
)

// Session keeps top-level names between runs, like an interactive
// interpreter. A Session runs one snippet at a time.
type Session struct {
	exec    *Executor
	lang    Language
	opts    []Option
	globals starlark.StringDict

	mu     sync.Mutex
	execMu sync.Mutex
	closed bool
}

// NewSession starts a session in lang. opts apply to every run and may be
// extended per run.
func (e *Executor) NewSession(lang Language, opts ...Option) (*Session, error) {
	predeclared := lang.Predeclared()
	globals := make(starlark.StringDict, len(predeclared)+1)
	for name, v := range predeclared {
		globals[name] = v
	}
	return &Session{
		exec:    e,
		lang:    lang,
		opts:    opts,
		globals: globals,
	}, nil
}

// Run executes code against the session's names. Assignments made before a
// failure are kept. Entry points do not apply to sessions.
func (s *Session) Run(ctx context.Context, code string, opts ...Option) Result {
	if !s.execMu.TryLock() {
		return Result{Error: ErrSessionBusy}
	}
	defer s.execMu.Unlock()

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return Result{Error: ErrSessionClosed}
	}

	cfg := defaultRunConfig()
	cfg.filename = "<session>"
	for _, opt := range s.opts {
		opt(&cfg)
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.entry = nil

	return s.exec.run(ctx, s.lang, cfg, func(ctx context.Context, out *strings.Builder) (term.Term, error) {
		f, err := parse(s.lang, cfg.filename, code)
		if err != nil {
			return nil, err
		}
		return s.exec.evaluate(ctx, s.lang, f, newCodec(cfg), s.globals, nil, cfg, out)
	})
}

// Names returns the names defined by the session's runs, sorted.
func (s *Session) Names() []string {
	s.execMu.Lock()
	defer s.execMu.Unlock()
	predeclared := s.lang.Predeclared()
	var names []string
	for _, name := range s.globals.Keys() {
		if _, ok := predeclared[name]; ok || name == HostModule {
			continue
		}
		names = append(names, name)
	}
	return names
}

// Close ends the session. Later runs fail with ErrSessionClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return nil
}

