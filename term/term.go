package term

import (
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Term is a value that can cross the host boundary.
//
// The set of implementations is closed: only the types of this package
// satisfy it.
type Term interface {
	// String renders the term the way the host runtime would inspect it.
	String() string
	isTerm()
}

// Nil is the host's nil atom.
type Nil struct{}

// Bool is a host boolean (the atoms true and false).
type Bool bool

// Float is a double precision float.
type Float float64

// Bytes is an immutable byte sequence (a host binary). Guest text is carried
// as UTF-8 encoded Bytes.
type Bytes string

// Sequence is an ordered list of terms. Guest lists and tuples both map to it.
type Sequence []Term

// ErrorPair is the in-band failure shape {error, Detail}.
type ErrorPair struct {
	Kind   Symbol
	Detail Bytes
}

// NewErrorPair returns {error, detail}.
func NewErrorPair(detail string) ErrorPair {
	return ErrorPair{Kind: symError, Detail: Bytes(detail)}
}

func (Nil) isTerm()       {}
func (Bool) isTerm()      {}
func (Int) isTerm()       {}
func (Float) isTerm()     {}
func (Bytes) isTerm()     {}
func (Symbol) isTerm()    {}
func (Sequence) isTerm()  {}
func (*Mapping) isTerm()  {}
func (ErrorPair) isTerm() {}

func (Nil) String() string { return "nil" }

func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

func (f Float) String() string {
	v := float64(f)
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !math.IsInf(v, 0) && !math.IsNaN(v) && !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func (b Bytes) String() string {
	if utf8.ValidString(string(b)) {
		return strconv.Quote(string(b))
	}
	var sb strings.Builder
	sb.WriteString("<<")
	for i := 0; i < len(b); i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(int(b[i])))
	}
	sb.WriteString(">>")
	return sb.String()
}

func (s Sequence) String() string {
	parts := make([]string, len(s))
	for i, t := range s {
		parts[i] = t.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (e ErrorPair) String() string {
	return "{" + e.Kind.String() + ", " + e.Detail.String() + "}"
}

// Int is an arbitrary precision integer. Values that fit in an int64 are kept
// unboxed.
type Int struct {
	small int64
	big   *big.Int
}

// MakeInt returns the Int for v.
func MakeInt(v int64) Int { return Int{small: v} }

// MakeBigInt returns the Int for v. v is copied.
func MakeBigInt(v *big.Int) Int {
	if v.IsInt64() {
		return Int{small: v.Int64()}
	}
	return Int{big: new(big.Int).Set(v)}
}

// Int64 returns the value and whether it fits in an int64.
func (i Int) Int64() (int64, bool) {
	if i.big != nil {
		return 0, false
	}
	return i.small, true
}

// BigInt returns a fresh big.Int holding the value.
func (i Int) BigInt() *big.Int {
	if i.big != nil {
		return new(big.Int).Set(i.big)
	}
	return big.NewInt(i.small)
}

// Sign returns -1, 0 or +1.
func (i Int) Sign() int {
	if i.big != nil {
		return i.big.Sign()
	}
	switch {
	case i.small < 0:
		return -1
	case i.small > 0:
		return 1
	}
	return 0
}

func (i Int) String() string {
	if i.big != nil {
		return i.big.String()
	}
	return strconv.FormatInt(i.small, 10)
}

// Equal reports whether a and b are structurally equal. Mappings compare
// without regard to pair order; NaN equals NaN.
func Equal(a, b Term) bool {
	switch a := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		b, ok := b.(Bool)
		return ok && a == b
	case Int:
		b, ok := b.(Int)
		if !ok {
			return false
		}
		if a.big == nil && b.big == nil {
			return a.small == b.small
		}
		return a.BigInt().Cmp(b.BigInt()) == 0
	case Float:
		b, ok := b.(Float)
		if !ok {
			return false
		}
		if math.IsNaN(float64(a)) && math.IsNaN(float64(b)) {
			return true
		}
		return a == b
	case Bytes:
		b, ok := b.(Bytes)
		return ok && a == b
	case Symbol:
		b, ok := b.(Symbol)
		return ok && a.name == b.name
	case Sequence:
		b, ok := b.(Sequence)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !Equal(a[i], b[i]) {
				return false
			}
		}
		return true
	case *Mapping:
		b, ok := b.(*Mapping)
		if !ok || a.Len() != b.Len() {
			return false
		}
		for _, p := range a.pairs {
			v, found := b.Get(p.Key)
			if !found || !Equal(p.Value, v) {
				return false
			}
		}
		return true
	case ErrorPair:
		b, ok := b.(ErrorPair)
		return ok && a.Kind == b.Kind && a.Detail == b.Detail
	}
	return false
}
