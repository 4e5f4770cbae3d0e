// Package termite evaluates python-flavoured snippets in an embedded Starlark
// interpreter and hands the value of their last expression back to the host
// as a term.
//
// # Overview
//
// Host values cross into a snippet as bindings and come back as results
// through the [term] package: nil, booleans, arbitrary-precision integers,
// floats, binaries, symbols, sequences, string-keyed mappings and error
// pairs. Symbols only become Starlark values when they are allowlisted, so a
// snippet cannot grow the host's symbol table.
//
// # Basic Usage
//
//	exec, _ := executor.New(hostfunc.NewRegistry())
//	defer exec.Close()
//
//	// One-shot run with bindings
//	bindings, _ := term.FromNative(map[string]any{"x": 41})
//	result := exec.Run(ctx, python.New(), `x + 1`, bindings)
//	fmt.Println(result.Value) // 42
//
//	// Session with persistent state
//	session, _ := exec.NewSession(python.New())
//	session.Run(ctx, `x = 42`)
//	session.Run(ctx, `x`) // 42
//
// # Host Module
//
// Snippets reach Go only through host.<name>(**kwargs). The registry in
// [hostfunc] decides what exists: a clock, a key-value store, the package
// catalog, and optionally mounted directories and allowlisted HTTP hosts.
//
// # Surfaces
//
// The termite binary runs snippets from the command line, a REPL, an HTTP
// server, an {packet, 4} port speaking the external term format, and an MCP
// server whose tools are handler scripts (see [handler]).
//
// See the [executor], [term], [codec], [hostfunc], [handler], [packages],
// [language/python] and [language/starlark] packages for details.
package termite
