package handler

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/caffeineduck/termite/executor"
	"github.com/caffeineduck/termite/term"
)

// Entry point methods of a handler script.
const (
	MethodView   = "view"
	MethodHandle = "handle"
)

// Script is a loaded handler script. The script's last statement is a def
// returning a handler; every call constructs a fresh handler.
type Script struct {
	*Descriptor

	view term.Term
	src  string
	path string
	exec *executor.Executor
	lang executor.Language
}

// Load runs src with the view entry point and decodes the descriptor.
func Load(ctx context.Context, exec *executor.Executor, lang executor.Language, filename, src string) (*Script, error) {
	view, err := exec.Execute(ctx, lang, src, nil,
		executor.WithFilename(filename),
		executor.WithEntryPoint(executor.EntryPoint{Method: MethodView}),
	)
	if err != nil {
		return nil, fmt.Errorf("load handler %s: %w", filename, err)
	}
	d, err := Decode(view)
	if err != nil {
		return nil, fmt.Errorf("load handler %s: %w", filename, err)
	}
	return &Script{
		Descriptor: d,
		view:       view,
		src:        src,
		path:       filename,
		exec:       exec,
		lang:       lang,
	}, nil
}

// LoadFS loads every *.star and *.py file at the top of fsys, sorted by
// name.
func LoadFS(ctx context.Context, exec *executor.Executor, lang executor.Language, fsys fs.FS) ([]*Script, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch path.Ext(e.Name()) {
		case ".star", ".py":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	scripts := make([]*Script, 0, len(names))
	for _, name := range names {
		src, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		s, err := Load(ctx, exec, lang, name, string(src))
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, s)
	}
	return scripts, nil
}

// View returns the handler view term as loaded.
func (s *Script) View() term.Term { return s.view }

// Invoke validates input and calls the handler's handle(input, context).
// A nil callCtx is passed as an empty mapping.
func (s *Script) Invoke(ctx context.Context, input, callCtx term.Term, opts ...executor.Option) (term.Term, error) {
	if err := s.ValidateInput(input); err != nil {
		return nil, err
	}
	if callCtx == nil {
		callCtx = term.NewMapping()
	}
	opts = append(opts,
		executor.WithFilename(s.path),
		executor.WithEntryPoint(executor.EntryPoint{
			Method: MethodHandle,
			Args:   []term.Term{input, callCtx},
		}),
	)
	return s.exec.Execute(ctx, s.lang, s.src, nil, opts...)
}

// Describe loads src and returns its view, for callers that only need the
// host representation.
func Describe(ctx context.Context, exec *executor.Executor, lang executor.Language, filename, src string) (term.Term, error) {
	s, err := Load(ctx, exec, lang, filename, src)
	if err != nil {
		return nil, err
	}
	return s.view, nil
}
