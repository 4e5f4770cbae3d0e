package hostfunc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

// MountMode is the permission level of a mount.
type MountMode int

const (
	// MountReadOnly allows only reads.
	MountReadOnly MountMode = iota
	// MountReadWrite allows writing and removing existing entries.
	MountReadWrite
	// MountReadWriteCreate also allows creating files and directories.
	MountReadWriteCreate
)

func (m MountMode) String() string {
	switch m {
	case MountReadOnly:
		return "ro"
	case MountReadWrite:
		return "rw"
	case MountReadWriteCreate:
		return "rwc"
	}
	return fmt.Sprintf("MountMode(%d)", int(m))
}

// Mount maps a host directory to a virtual path seen by snippets.
type Mount struct {
	VirtualPath string
	HostPath    string
	Mode        MountMode
}

// ParseMount parses "virtual:host:mode" with mode ro, rw or rwc.
func ParseMount(spec string) (Mount, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return Mount{}, fmt.Errorf("invalid mount spec %q (expected virtual:host:mode)", spec)
	}
	var mode MountMode
	switch parts[2] {
	case "ro":
		mode = MountReadOnly
	case "rw":
		mode = MountReadWrite
	case "rwc":
		mode = MountReadWriteCreate
	default:
		return Mount{}, fmt.Errorf("invalid mount mode %q (expected ro, rw, or rwc)", parts[2])
	}
	return Mount{VirtualPath: parts[0], HostPath: parts[1], Mode: mode}, nil
}

// DefaultMaxFileSize bounds reads and writes unless configured otherwise.
const DefaultMaxFileSize = 10 << 20

// FSOption configures an FS.
type FSOption func(*FS)

// WithMaxFileSize bounds the size of files read and written.
func WithMaxFileSize(n int64) FSOption {
	return func(f *FS) { f.maxFileSize = n }
}

type mount struct {
	Mount
	root *os.Root
}

// FS gives snippets access to mounted host directories. Every access goes
// through an os.Root, so paths cannot leave their mount through ".." or
// symlinks.
type FS struct {
	mounts      []mount
	maxFileSize int64
}

// NewFS opens the host directory of every mount.
func NewFS(mounts []Mount, opts ...FSOption) (*FS, error) {
	f := &FS{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(f)
	}
	for _, m := range mounts {
		root, err := os.OpenRoot(m.HostPath)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("mount %s: %w", m.VirtualPath, err)
		}
		m.VirtualPath = path.Clean("/" + m.VirtualPath)
		f.mounts = append(f.mounts, mount{Mount: m, root: root})
	}
	// Longest virtual path first, so nested mounts win.
	sort.SliceStable(f.mounts, func(i, j int) bool {
		return len(f.mounts[i].VirtualPath) > len(f.mounts[j].VirtualPath)
	})
	return f, nil
}

// Register adds the fs_* functions to r.
func (f *FS) Register(r *Registry) {
	r.Register("fs_read", f.Read)
	r.Register("fs_write", f.Write)
	r.Register("fs_list", f.List)
	r.Register("fs_exists", f.Exists)
	r.Register("fs_mkdir", f.Mkdir)
	r.Register("fs_remove", f.Remove)
	r.Register("fs_stat", f.Stat)
}

// Close releases the mount roots.
func (f *FS) Close() error {
	var errs []error
	for _, m := range f.mounts {
		errs = append(errs, m.root.Close())
	}
	return errors.Join(errs...)
}

var (
	errNoMount  = errors.New("permission denied: path not in any mount")
	errReadOnly = errors.New("permission denied: read-only mount")
	errNoCreate = errors.New("permission denied: cannot create new entries")
)

// resolve finds the mount holding virtualPath and the path relative to its
// root.
func (f *FS) resolve(virtualPath string) (*mount, string, error) {
	if virtualPath == "" {
		return nil, "", errors.New("path required")
	}
	vp := path.Clean("/" + virtualPath)
	for i := range f.mounts {
		m := &f.mounts[i]
		if vp == m.VirtualPath {
			return m, ".", nil
		}
		if m.VirtualPath == "/" {
			return m, strings.TrimPrefix(vp, "/"), nil
		}
		if rel, ok := strings.CutPrefix(vp, m.VirtualPath+"/"); ok {
			return m, rel, nil
		}
	}
	return nil, "", errNoMount
}

func (f *FS) pathArg(args map[string]any) (*mount, string, string, error) {
	var req FSPathRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, "", "", err
	}
	m, rel, err := f.resolve(req.Path)
	return m, rel, req.Path, err
}

func notFound(err error, p string) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("not found: %s", p)
	}
	return err
}

// Read returns the content of a file as a string.
func (f *FS) Read(_ context.Context, args map[string]any) (any, error) {
	m, rel, p, err := f.pathArg(args)
	if err != nil {
		return nil, err
	}
	info, err := m.root.Stat(rel)
	if err != nil {
		return nil, notFound(err, p)
	}
	if info.Size() > f.maxFileSize {
		return nil, fmt.Errorf("file exceeds %d bytes: %s", f.maxFileSize, p)
	}
	data, err := m.root.ReadFile(rel)
	if err != nil {
		return nil, notFound(err, p)
	}
	return string(data), nil
}

// Write replaces the content of a file. New files need a rwc mount.
func (f *FS) Write(_ context.Context, args map[string]any) (any, error) {
	var req FSWriteRequest
	if err := decodeArgs(args, &req); err != nil {
		return nil, err
	}
	m, rel, err := f.resolve(req.Path)
	if err != nil {
		return nil, err
	}
	if m.Mode == MountReadOnly {
		return nil, errReadOnly
	}
	if int64(len(req.Content)) > f.maxFileSize {
		return nil, fmt.Errorf("content exceeds %d bytes", f.maxFileSize)
	}
	if _, err := m.root.Stat(rel); errors.Is(err, fs.ErrNotExist) && m.Mode != MountReadWriteCreate {
		return nil, errNoCreate
	}
	if err := m.root.WriteFile(rel, []byte(req.Content), 0o644); err != nil {
		return nil, err
	}
	return "ok", nil
}

// List returns the entries of a directory sorted by name.
func (f *FS) List(_ context.Context, args map[string]any) (any, error) {
	m, rel, p, err := f.pathArg(args)
	if err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(m.root.FS(), rel)
	if err != nil {
		return nil, notFound(err, p)
	}
	out := make([]any, 0, len(entries))
	for _, e := range entries {
		item := map[string]any{
			"name":   e.Name(),
			"is_dir": e.IsDir(),
		}
		if info, err := e.Info(); err == nil {
			item["size"] = info.Size()
		}
		out = append(out, item)
	}
	return out, nil
}

// Exists reports whether a path exists. Paths outside every mount do not.
func (f *FS) Exists(_ context.Context, args map[string]any) (any, error) {
	m, rel, _, err := f.pathArg(args)
	if errors.Is(err, errNoMount) {
		return false, nil
	}
	if err != nil {
		return nil, err
	}
	_, err = m.root.Stat(rel)
	return err == nil, nil
}

// Mkdir creates a directory and its parents. It needs a rwc mount.
func (f *FS) Mkdir(_ context.Context, args map[string]any) (any, error) {
	m, rel, _, err := f.pathArg(args)
	if err != nil {
		return nil, err
	}
	if m.Mode != MountReadWriteCreate {
		return nil, errNoCreate
	}
	if err := m.root.MkdirAll(rel, 0o755); err != nil {
		return nil, err
	}
	return "ok", nil
}

// Remove deletes a file or an empty directory.
func (f *FS) Remove(_ context.Context, args map[string]any) (any, error) {
	m, rel, p, err := f.pathArg(args)
	if err != nil {
		return nil, err
	}
	if m.Mode == MountReadOnly {
		return nil, errReadOnly
	}
	if rel == "." {
		return nil, fmt.Errorf("cannot remove mount point %s", p)
	}
	if err := m.root.Remove(rel); err != nil {
		return nil, notFound(err, p)
	}
	return "ok", nil
}

// Stat describes a file or directory.
func (f *FS) Stat(_ context.Context, args map[string]any) (any, error) {
	m, rel, p, err := f.pathArg(args)
	if err != nil {
		return nil, err
	}
	info, err := m.root.Stat(rel)
	if err != nil {
		return nil, notFound(err, p)
	}
	name := info.Name()
	if rel == "." {
		name = path.Base(m.VirtualPath)
	}
	return map[string]any{
		"name":     name,
		"size":     info.Size(),
		"is_dir":   info.IsDir(),
		"mod_time": info.ModTime().Unix(),
	}, nil
}
