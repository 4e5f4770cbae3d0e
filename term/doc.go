// Package term models the values exchanged with the host runtime.
//
// # Overview
//
// A [Term] is a closed tagged union mirroring the data model of an
// Erlang-family runtime: [Nil], [Bool], [Int], [Float], [Bytes], [Symbol],
// [Sequence], [Mapping] and [ErrorPair]. Terms are built fresh for every call
// and are never mutated once handed out.
//
// # Symbols
//
// Symbols become atoms on the host, and atoms are never garbage collected
// there. To keep the host's atom table bounded a [Symbol] can only be obtained
// through [Intern], which accepts names from a fixed, compiled-in allowlist:
//
//	sym, err := term.Intern("name")      // ok
//	_, err = term.Intern("user_supplied") // *UnsafeSymbolError
//
// A [SymbolPolicy] decides what happens when a name is rejected: the strict
// policy surfaces the error, the permissive policy degrades the name to
// [Bytes].
//
//	key, err := term.PolicyPermissive.Key("nickname") // Bytes("nickname"), nil
//
// Struct module names ("Elixir.Data.Types.Point") are built with
// [StructModule] and are not subject to the allowlist: the struct module has
// to exist on the host for the struct to be usable at all.
package term
