package executor

import (
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/caffeineduck/termite/packages"
)

// Language is a guest dialect. Implement it to change what snippets may
// write and which names they see.
type Language interface {
	// Name returns a unique identifier for the dialect (e.g. "python", "starlark").
	Name() string

	// FileOptions returns the parser and resolver relaxations of the dialect.
	FileOptions() *syntax.FileOptions

	// Predeclared returns the names every snippet starts with. The map is
	// not modified by the executor.
	Predeclared() starlark.StringDict

	// Packages returns the modules reachable through load(). It may be nil.
	Packages() *packages.Catalog
}
