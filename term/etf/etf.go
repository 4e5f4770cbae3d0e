// Package etf encodes Terms in the Erlang External Term Format and frames
// them the way an Erlang port opened with {packet, 4} expects.
//
// Wire mapping:
//
//	Nil          atom nil
//	Bool         atom true / false
//	Int          SMALL_INTEGER, INTEGER or SMALL_BIG / LARGE_BIG
//	Float        NEW_FLOAT
//	Bytes        BINARY
//	Symbol       SMALL_ATOM_UTF8 / ATOM_UTF8
//	Sequence     LIST (NIL for the empty sequence)
//	Mapping      MAP
//	ErrorPair    {error, Binary}
//
// Decoding accepts the legacy atom, float and string encodings too. Tuples
// decode to Sequences, except {error, Binary} which decodes to an ErrorPair.
// Atoms outside the symbol allowlist are never turned into Symbols: they
// decode to Bytes.
package etf

import "errors"

// Version is the leading byte of every encoded term.
const Version = 131

const (
	tagNewFloat      = 70
	tagSmallInteger  = 97
	tagInteger       = 98
	tagFloat         = 99
	tagAtom          = 100
	tagSmallTuple    = 104
	tagLargeTuple    = 105
	tagNil           = 106
	tagString        = 107
	tagList          = 108
	tagBinary        = 109
	tagSmallBig      = 110
	tagLargeBig      = 111
	tagSmallAtom     = 115
	tagMap           = 116
	tagAtomUTF8      = 118
	tagSmallAtomUTF8 = 119
)

var (
	// ErrVersion is returned for input that does not start with Version.
	ErrVersion = errors.New("etf: bad version byte")
	// ErrTruncated is returned when the input ends inside a term.
	ErrTruncated = errors.New("etf: truncated term")
)

// Tuple is an Erlang tuple. It only exists on the encoding side, to build
// protocol envelopes around Terms.
type Tuple []any

// Atom is an Erlang atom written without the allowlist check. It only exists
// on the encoding side, for protocol tags.
type Atom string
