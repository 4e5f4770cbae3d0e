// Package starlark provides the strict Starlark dialect.
package starlark

import (
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"github.com/caffeineduck/termite/packages"
)

// Starlark implements executor.Language with the standard dialect. Only
// struct is predeclared; everything else comes through load().
type Starlark struct {
	predeclared starlark.StringDict
	catalog     *packages.Catalog
}

// New returns a Starlark language adapter.
func New() *Starlark {
	s := &Starlark{
		predeclared: starlark.StringDict{
			"struct": starlark.NewBuiltin("struct", starlarkstruct.Make),
		},
		catalog: packages.Default(),
	}
	s.predeclared.Freeze()
	return s
}

// Name returns "starlark".
func (s *Starlark) Name() string {
	return "starlark"
}

// FileOptions returns the standard options, except that load() binds
// globally.
func (s *Starlark) FileOptions() *syntax.FileOptions {
	return &syntax.FileOptions{LoadBindsGlobally: true}
}

// Predeclared returns struct.
func (s *Starlark) Predeclared() starlark.StringDict {
	return s.predeclared
}

// Packages returns the load() catalog.
func (s *Starlark) Packages() *packages.Catalog {
	return s.catalog
}
