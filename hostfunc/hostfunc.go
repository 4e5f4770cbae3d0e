package hostfunc

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Func is a host function. args holds the keyword arguments of the call.
type Func func(ctx context.Context, args map[string]any) (any, error)

// Registry holds the functions a snippet reaches as host.<name>. It may be
// changed while runs are in flight; each run sees the functions present when
// it starts.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// Register adds fn under name, replacing any function already there. name
// must be a valid identifier; anything else panics.
func (r *Registry) Register(name string, fn Func) {
	if !isIdent(name) {
		panic(fmt.Sprintf("hostfunc: invalid function name %q", name))
	}
	r.mu.Lock()
	r.funcs[name] = fn
	r.mu.Unlock()
}

// Unregister removes name and reports whether it was present.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.funcs[name]
	delete(r.funcs, name)
	return ok
}

func (r *Registry) Get(name string) (Func, bool) {
	r.mu.RLock()
	fn, ok := r.funcs[name]
	r.mu.RUnlock()
	return fn, ok
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

func isIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, c := range name {
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && '0' <= c && c <= '9':
		default:
			return false
		}
	}
	return !keywords[name]
}

// keywords are the Starlark keywords and reserved words, which cannot follow
// "host.".
var keywords = map[string]bool{
	"and": true, "as": true, "assert": true, "async": true, "await": true,
	"break": true, "class": true, "continue": true, "def": true, "del": true,
	"elif": true, "else": true, "except": true, "finally": true, "for": true,
	"from": true, "global": true, "if": true, "import": true, "in": true,
	"is": true, "lambda": true, "load": true, "nonlocal": true, "not": true,
	"or": true, "pass": true, "raise": true, "return": true, "try": true,
	"while": true, "with": true, "yield": true,
}
