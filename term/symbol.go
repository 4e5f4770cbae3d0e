package term

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrUnsafeSymbol is matched by every *UnsafeSymbolError.
var ErrUnsafeSymbol = errors.New("unsafe symbol")

// UnsafeSymbolError reports a name that is not allowed to become a Symbol.
type UnsafeSymbolError struct {
	Name string
}

func (e *UnsafeSymbolError) Error() string {
	return fmt.Sprintf("attempted to create unsafe atom: %s", e.Name)
}

func (e *UnsafeSymbolError) Is(target error) bool { return target == ErrUnsafeSymbol }

// Symbol is an atom of the host runtime. The zero Symbol is invalid.
type Symbol struct {
	name string
}

var (
	symError  = Symbol{name: "error"}
	symOK     = Symbol{name: "ok"}
	symStruct = Symbol{name: "__struct__"}
)

// Intern returns the Symbol for name if name is allowlisted.
func Intern(name string) (Symbol, error) {
	if _, ok := allowlist[name]; !ok {
		return Symbol{}, &UnsafeSymbolError{Name: name}
	}
	return Symbol{name: name}, nil
}

// MustIntern is like Intern but panics on a name outside the allowlist. It is
// meant for package level constants.
func MustIntern(name string) Symbol {
	s, err := Intern(name)
	if err != nil {
		panic(err)
	}
	return s
}

// Allowed reports whether name may become a Symbol.
func Allowed(name string) bool {
	_, ok := allowlist[name]
	return ok
}

// ErrorSymbol returns the atom error.
func ErrorSymbol() Symbol { return symError }

// OKSymbol returns the atom ok.
func OKSymbol() Symbol { return symOK }

// StructKey returns the atom __struct__.
func StructKey() Symbol { return symStruct }

// StructModulePrefix is the namespace every struct module lives in.
const StructModulePrefix = "Elixir."

// StructModule returns the module symbol for a guest class name: the name is
// split on ".", each segment gets an upper case first letter and the result
// is prefixed with StructModulePrefix. "data.types.point" becomes
// Elixir.Data.Types.Point.
func StructModule(class string) Symbol {
	segs := strings.Split(class, ".")
	for i, s := range segs {
		segs[i] = capitalize(s)
	}
	return Symbol{name: StructModulePrefix + strings.Join(segs, ".")}
}

// ModuleSymbol returns a symbol for a module name that is already fully
// qualified, such as "Elixir.Data.Point". It fails unless name carries
// StructModulePrefix.
func ModuleSymbol(name string) (Symbol, error) {
	if !strings.HasPrefix(name, StructModulePrefix) || len(name) == len(StructModulePrefix) {
		return Symbol{}, &UnsafeSymbolError{Name: name}
	}
	return Symbol{name: name}, nil
}

// capitalize upper cases the first rune and lower cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// Name returns the atom text.
func (s Symbol) Name() string { return s.name }

// IsZero reports whether s is the invalid zero Symbol.
func (s Symbol) IsZero() bool { return s.name == "" }

func (s Symbol) String() string {
	if strings.HasPrefix(s.name, StructModulePrefix) {
		return strings.TrimPrefix(s.name, StructModulePrefix)
	}
	if isPlainAtom(s.name) {
		return ":" + s.name
	}
	return `:"` + s.name + `"`
}

func isPlainAtom(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || r == '@'):
		default:
			return false
		}
	}
	return true
}
