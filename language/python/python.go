// Package python provides the Python-flavoured Starlark dialect.
package python

import (
	"go.starlark.net/lib/json"
	"go.starlark.net/lib/math"
	"go.starlark.net/lib/time"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"github.com/caffeineduck/termite/codec"
	"github.com/caffeineduck/termite/handler"
	"github.com/caffeineduck/termite/packages"
)

// Python implements executor.Language with every Starlark relaxation
// enabled: sets, while loops, top-level control flow, global reassignment
// and recursion.
type Python struct {
	predeclared starlark.StringDict
	catalog     *packages.Catalog
}

// Option configures a Python dialect.
type Option func(*Python)

// WithCatalog replaces the modules reachable through load().
func WithCatalog(c *packages.Catalog) Option {
	return func(p *Python) {
		p.catalog = c
	}
}

// New returns a Python language adapter.
func New(opts ...Option) *Python {
	p := &Python{
		predeclared: starlark.StringDict{
			"struct":  starlark.NewBuiltin("struct", starlarkstruct.Make),
			"json":    json.Module,
			"math":    math.Module,
			"time":    time.Module,
			"atom":    codec.AtomBuiltin,
			"handler": handler.Builtin,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.catalog == nil {
		p.catalog = packages.Default()
	}
	p.predeclared.Freeze()
	return p
}

// Name returns "python".
func (p *Python) Name() string {
	return "python"
}

// FileOptions returns the relaxed options. load() binds globally so that a
// trailing expression sees loaded names.
func (p *Python) FileOptions() *syntax.FileOptions {
	return &syntax.FileOptions{
		Set:               true,
		While:             true,
		TopLevelControl:   true,
		GlobalReassign:    true,
		LoadBindsGlobally: true,
		Recursion:         true,
	}
}

// Predeclared returns struct, json, math, time, atom and handler.
func (p *Python) Predeclared() starlark.StringDict {
	return p.predeclared
}

// Packages returns the load() catalog.
func (p *Python) Packages() *packages.Catalog {
	return p.catalog
}
