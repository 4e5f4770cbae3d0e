// Package executor runs guest snippets and returns their value as a
// [term.Term].
//
// # Overview
//
// A snippet is a sequence of statements. Every statement but the last runs
// for its effects; the last one decides the result:
//
//   - an expression is evaluated and its value encoded,
//   - a def combined with an [EntryPoint] is instantiated and invoked,
//   - anything else yields Nil.
//
// Bindings are installed as module globals before the first statement, so
// prefix definitions and bindings are visible everywhere in the snippet.
//
// # Basic Usage
//
//	exec, err := executor.New(hostfunc.NewRegistry())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer exec.Close()
//
//	bindings := term.NewMapping(
//	    term.Pair{Key: term.Bytes("x"), Value: term.MakeInt(5)},
//	    term.Pair{Key: term.Bytes("y"), Value: term.MakeInt(6)},
//	)
//	result := exec.Run(ctx, python.New(), "x * y", bindings)
//	fmt.Println(result.Value) // 30
//
// # Failures
//
// Failures are *Error values classified by [Kind] (parse, runtime,
// unsafe_symbol, encoding) and carry the guest failure category:
//
//	_, err := exec.Execute(ctx, python.New(), "1/0", nil)
//	errors.Is(err, executor.ErrRuntime) // true
//	err.Error()                         // "ZeroDivisionError: floating-point division by zero"
//
// With [WithErrorMode]([ErrorModeInBand]) the failure is returned as the
// value {error, "<Category>: <Detail>"} instead.
//
// # Host Functions
//
// Functions of the executor's [hostfunc.Registry] are callable from snippets
// as host.<name>(**kwargs).
//
// # Sessions
//
// A [Session] keeps top-level names between runs, for interactive use:
//
//	session, _ := exec.NewSession(python.New())
//	session.Run(ctx, "x = 41")
//	session.Run(ctx, "x + 1").Value // 42
//
// # Language Interface
//
// To add a dialect, implement the [Language] interface.
// See [github.com/caffeineduck/termite/language/python] for an example.
package executor
