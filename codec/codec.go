package codec

import (
	"go.starlark.net/starlark"

	"github.com/caffeineduck/termite/term"
)

// maxDepth bounds recursion over self-referencing lists and dicts.
const maxDepth = 1000

// Codec converts values in both directions. It holds no mutable state and
// is safe for concurrent use. The zero value is ready to use with the
// permissive policy.
type Codec struct {
	policy          term.SymbolPolicy
	preserveSymbols bool
}

// Option configures a Codec.
type Option func(*Codec)

// WithPolicy sets the policy used for struct field names.
func WithPolicy(p term.SymbolPolicy) Option {
	return func(c *Codec) { c.policy = p }
}

// WithPreserveSymbols makes Decode produce atom values for Symbols instead
// of str.
func WithPreserveSymbols() Option {
	return func(c *Codec) { c.preserveSymbols = true }
}

// New returns a Codec configured by opts.
func New(opts ...Option) *Codec {
	c := &Codec{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the struct field policy.
func (c *Codec) Policy() term.SymbolPolicy { return c.policy }

var std Codec

// Encode encodes v with the default codec.
func Encode(v starlark.Value) (term.Term, error) { return std.Encode(v) }

// Decode decodes t with the default codec.
func Decode(t term.Term) (starlark.Value, error) { return std.Decode(t) }
