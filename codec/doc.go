// Package codec converts between Starlark values and [term.Term].
//
// Encoding is a closed match over the Starlark value kinds:
//
//	None                 Nil
//	bool, int, float     Bool, Int, Float
//	str, bytes           Bytes (UTF-8)
//	list, tuple, set     Sequence
//	dict, struct         Mapping, or a struct Mapping when "__class__" is present
//	atom                 Symbol
//
// Any other value fails with *EncodingError unless it implements [Marshaler].
//
// # Struct conversion
//
// A dict holding the key "__class__" is encoded as a struct: "__class__" is
// removed, every remaining string key is converted to a Symbol under the
// codec's [term.SymbolPolicy] and a "__struct__" entry naming the module is
// added unless one is already present:
//
//	{"__class__": "data.types.point", "x": 1}
//	=> %{__struct__: Elixir.Data.Types.Point, x: 1}
//
// Decoding is the structural inverse. Symbols decode to str, or to atom
// values when the codec preserves symbols, which makes encode(decode(t))
// reproduce t for every term that is not struct shaped.
package codec
