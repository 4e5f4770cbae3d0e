// Package hostfunc provides the Go functions snippets can call.
//
// Host functions take keyword arguments decoded into plain Go values and
// return plain Go values; snippets reach them as host.<name>(**kwargs).
//
// # Registry
//
// The [Registry] manages available host functions. Register custom functions
// or use the built-in helpers:
//
//	registry := hostfunc.NewRegistry()
//	registry.Register("my_func", func(ctx context.Context, args map[string]any) (any, error) {
//	    return "result", nil
//	})
//
// # Built-in Capabilities
//
// Clock: time_now via [RegisterClock].
//
// Key-Value Store: [KV] over a [KVBackend], in memory or in Redis, with
// size and entry limits.
//
//	kv := hostfunc.NewKV(hostfunc.NewMemoryBackend(), hostfunc.WithMaxEntries(100))
//	kv.Register(registry) // kv_get, kv_set, kv_delete, kv_keys
//
// Filesystem: [FS] mounts host directories read-only, read-write or
// read-write-create. Access goes through os.Root, so snippets cannot leave a
// mount.
//
//	fs, err := hostfunc.NewFS([]hostfunc.Mount{{VirtualPath: "/data", HostPath: "./in", Mode: hostfunc.MountReadOnly}})
//	fs.Register(registry) // fs_read, fs_write, fs_list, fs_exists, fs_mkdir, fs_remove, fs_stat
//
// HTTP: [HTTP] issues requests to allowlisted hosts only.
//
//	hostfunc.NewHTTP(hostfunc.WithAllowedHosts("api.example.com")).Register(registry)
//
// Packages: [Pkg] answers pkg_list, pkg_check and pkg_import from a
// package catalog.
package hostfunc
