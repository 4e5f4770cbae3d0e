package codec

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/caffeineduck/termite/term"
)

// Atom is the guest representation of a Symbol.
type Atom struct {
	sym term.Symbol
}

var (
	_ starlark.Value      = Atom{}
	_ starlark.Comparable = Atom{}
	_ starlark.HasAttrs   = Atom{}
)

// NewAtom wraps sym.
func NewAtom(sym term.Symbol) Atom { return Atom{sym: sym} }

// Symbol returns the wrapped symbol.
func (a Atom) Symbol() term.Symbol { return a.sym }

func (a Atom) String() string        { return a.sym.String() }
func (a Atom) Type() string          { return "atom" }
func (a Atom) Freeze()               {}
func (a Atom) Truth() starlark.Bool  { return starlark.True }
func (a Atom) Hash() (uint32, error) { return starlark.String(a.sym.Name()).Hash() }

func (a Atom) CompareSameType(op syntax.Token, y starlark.Value, _ int) (bool, error) {
	b := y.(Atom)
	switch op {
	case syntax.EQL:
		return a.sym == b.sym, nil
	case syntax.NEQ:
		return a.sym != b.sym, nil
	}
	return false, fmt.Errorf("%s %s %s not implemented", a.Type(), op, b.Type())
}

func (a Atom) Attr(name string) (starlark.Value, error) {
	if name == "name" {
		return starlark.String(a.sym.Name()), nil
	}
	return nil, nil
}

func (a Atom) AttrNames() []string { return []string{"name"} }

// AtomBuiltin is the guest function atom(name). It fails for names outside
// the symbol allowlist.
var AtomBuiltin = starlark.NewBuiltin("atom", func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &name); err != nil {
		return nil, err
	}
	sym, err := term.Intern(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	return NewAtom(sym), nil
})
