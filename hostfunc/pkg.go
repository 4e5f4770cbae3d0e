package hostfunc

import (
	"context"
	"errors"
	"strings"

	"github.com/caffeineduck/termite/packages"
	"github.com/caffeineduck/termite/term"
)

// Pkg exposes a package catalog to snippets.
type Pkg struct {
	catalog *packages.Catalog
}

// NewPkg returns package functions over catalog.
func NewPkg(catalog *packages.Catalog) *Pkg {
	return &Pkg{catalog: catalog}
}

// Register adds pkg_list, pkg_check and pkg_import to r.
func (p *Pkg) Register(r *Registry) {
	r.Register("pkg_list", p.List)
	r.Register("pkg_check", p.Check)
	r.Register("pkg_import", p.Import)
}

func packageName(args map[string]any) (string, error) {
	var req PkgRequest
	if err := decodeArgs(args, &req); err != nil {
		return "", err
	}
	name := req.Name
	if name == "" {
		return "", errors.New("package name required")
	}
	if strings.ContainsAny(name, ";|&$`") {
		return "", errors.New("invalid package name")
	}
	return name, nil
}

// List returns name => version.
func (p *Pkg) List(context.Context, map[string]any) (any, error) {
	return term.ToNative(p.catalog.List()), nil
}

// Check returns {"available": bool, "version": str | None} for "name".
func (p *Pkg) Check(_ context.Context, args map[string]any) (any, error) {
	name, err := packageName(args)
	if err != nil {
		return nil, err
	}
	return term.ToNative(p.catalog.Check(name)), nil
}

// Import loads "name" and returns {"success": bool, "error": str | None}.
func (p *Pkg) Import(_ context.Context, args map[string]any) (any, error) {
	name, err := packageName(args)
	if err != nil {
		return nil, err
	}
	return term.ToNative(p.catalog.Import(name)), nil
}
