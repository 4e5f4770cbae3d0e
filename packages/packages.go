// Package packages is the catalog of modules a snippet can load().
//
// Every catalog entry has a version. Built-in modules report the version of
// the interpreter library compiled into the binary; modules added from source
// report "local".
package packages

import (
	"fmt"
	"io/fs"
	"path"
	"runtime/debug"
	"sort"
	"strings"
	"sync"

	"go.starlark.net/lib/json"
	"go.starlark.net/lib/math"
	"go.starlark.net/lib/time"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"
)

const interpreterPath = "go.starlark.net"

// LocalVersion is the version reported for modules added from source.
const LocalVersion = "local"

// Module is one loadable entry.
type Module struct {
	Name    string
	Version string
	load    func(thread *starlark.Thread) (starlark.StringDict, error)
}

// Catalog is a set of modules. It is safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	modules map[string]Module
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{modules: make(map[string]Module)}
}

// Default returns a catalog holding the json, math, time and struct
// modules.
func Default() *Catalog {
	c := New()
	v := InterpreterVersion()
	c.AddValue("json", v, json.Module)
	c.AddValue("math", v, math.Module)
	c.AddValue("time", v, time.Module)
	c.AddValue("struct", v, starlark.NewBuiltin("struct", starlarkstruct.Make))
	return c
}

// InterpreterVersion returns the version of the interpreter module compiled
// into the running binary, or "(devel)" when it cannot be determined.
func InterpreterVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "(devel)"
	}
	for _, dep := range info.Deps {
		if dep.Path == interpreterPath {
			if dep.Replace != nil {
				return dep.Replace.Version
			}
			return dep.Version
		}
	}
	return "(devel)"
}

// AddValue registers a module whose members are those of v, when v is a
// *starlarkstruct.Module, plus v itself under name.
func (c *Catalog) AddValue(name, version string, v starlark.Value) {
	c.add(Module{
		Name:    name,
		Version: version,
		load: func(*starlark.Thread) (starlark.StringDict, error) {
			out := starlark.StringDict{name: v}
			if m, ok := v.(*starlarkstruct.Module); ok {
				for k, member := range m.Members {
					out[k] = member
				}
			}
			return out, nil
		},
	})
}

// AddSource registers a module implemented by guest source. The source is
// executed on every load, on the loading thread.
func (c *Catalog) AddSource(name, src string, opts *syntax.FileOptions, predeclared starlark.StringDict) {
	c.add(Module{
		Name:    name,
		Version: LocalVersion,
		load: func(thread *starlark.Thread) (starlark.StringDict, error) {
			return starlark.ExecFileOptions(opts, thread, name, src, predeclared)
		},
	})
}

// AddDir registers every *.star file of fsys under its base name
// ("lib/util.star" loads as "util.star").
func (c *Catalog) AddDir(fsys fs.FS, opts *syntax.FileOptions, predeclared starlark.StringDict) error {
	return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".star") {
			return nil
		}
		src, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		c.AddSource(path.Base(p), string(src), opts, predeclared)
		return nil
	})
}

func (c *Catalog) add(m Module) {
	c.mu.Lock()
	c.modules[m.Name] = m
	c.mu.Unlock()
}

// Lookup returns the module registered under name.
func (c *Catalog) Lookup(name string) (Module, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.modules[name]
	return m, ok
}

// Names returns the sorted module names.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.modules))
	for n := range c.modules {
		names = append(names, n)
	}
	c.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Load implements starlark.Thread.Load.
func (c *Catalog) Load(thread *starlark.Thread, module string) (starlark.StringDict, error) {
	m, ok := c.Lookup(module)
	if !ok {
		return nil, fmt.Errorf("no module named %q", module)
	}
	return m.load(thread)
}

// TryImport loads name on a scratch thread and reports the failure, if any.
func (c *Catalog) TryImport(name string) error {
	thread := &starlark.Thread{Name: "import " + name, Load: c.Load}
	_, err := c.Load(thread, name)
	return err
}
