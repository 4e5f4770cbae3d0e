package codec

import (
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/caffeineduck/termite/term"
)

func dict(t *testing.T, kv ...starlark.Value) *starlark.Dict {
	t.Helper()
	d := starlark.NewDict(len(kv) / 2)
	for i := 0; i < len(kv); i += 2 {
		require.NoError(t, d.SetKey(kv[i], kv[i+1]))
	}
	return d
}

func sym(name string) term.Symbol { return term.MustIntern(name) }

func TestEncodeScalars(t *testing.T) {
	huge, _ := new(big.Int).SetString("340282366920938463463374607431768211456", 10)
	tests := []struct {
		name string
		in   starlark.Value
		want term.Term
	}{
		{"none", starlark.None, term.Nil{}},
		{"true", starlark.True, term.Bool(true)},
		{"int", starlark.MakeInt(42), term.MakeInt(42)},
		{"big int", starlark.MakeBigInt(huge), term.MakeBigInt(huge)},
		{"float", starlark.Float(1.5), term.Float(1.5)},
		{"string", starlark.String("héllo"), term.Bytes("héllo")},
		{"bytes", starlark.Bytes("\x00\x01"), term.Bytes("\x00\x01")},
		{"list", starlark.NewList([]starlark.Value{starlark.MakeInt(1), starlark.String("a")}), term.Sequence{term.MakeInt(1), term.Bytes("a")}},
		{"tuple", starlark.Tuple{starlark.None}, term.Sequence{term.Nil{}}},
		{"atom", NewAtom(sym("ok")), sym("ok")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.in)
			require.NoError(t, err)
			assert.True(t, term.Equal(tt.want, got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestEncodePlainDictKeepsBytesKeys(t *testing.T) {
	got, err := Encode(dict(t,
		starlark.String("name"), starlark.String("Alice"),
		starlark.MakeInt(1), starlark.True,
	))
	require.NoError(t, err)

	want := term.NewMapping(
		term.Pair{Key: term.Bytes("name"), Value: term.Bytes("Alice")},
		term.Pair{Key: term.MakeInt(1), Value: term.Bool(true)},
	)
	assert.True(t, term.Equal(want, got), "got %s", got)
}

func TestStructConversion(t *testing.T) {
	c := New(WithPolicy(term.PolicyStrict))
	got, err := c.Encode(dict(t,
		starlark.String("__class__"), starlark.String("user"),
		starlark.String("name"), starlark.String("Alice"),
	))
	require.NoError(t, err)

	m, ok := got.(*term.Mapping)
	require.True(t, ok)
	mod, ok := m.Get(term.StructKey())
	require.True(t, ok)
	assert.Equal(t, term.StructModule("user"), mod)
	assert.Equal(t, "Elixir.User", mod.(term.Symbol).Name())

	name, ok := m.Get(sym("name"))
	require.True(t, ok)
	assert.Equal(t, term.Bytes("Alice"), name)

	_, ok = m.GetString("__class__")
	assert.False(t, ok)
	assert.Equal(t, 2, m.Len())
}

func TestStructConversionDottedClass(t *testing.T) {
	got, err := Encode(dict(t, starlark.String("__class__"), starlark.String("data.types.point")))
	require.NoError(t, err)
	mod, _ := got.(*term.Mapping).Get(term.StructKey())
	assert.Equal(t, "Elixir.Data.Types.Point", mod.(term.Symbol).Name())
}

func TestStructConversionPolicy(t *testing.T) {
	in := dict(t,
		starlark.String("__class__"), starlark.String("user"),
		starlark.String("nickname"), starlark.String("al"),
	)

	_, err := New(WithPolicy(term.PolicyStrict)).Encode(in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, term.ErrUnsafeSymbol))

	got, err := New(WithPolicy(term.PolicyPermissive)).Encode(in)
	require.NoError(t, err)
	v, ok := got.(*term.Mapping).Get(term.Bytes("nickname"))
	require.True(t, ok)
	assert.Equal(t, term.Bytes("al"), v)
}

func TestStructConversionKeepsExplicitStruct(t *testing.T) {
	got, err := Encode(dict(t,
		starlark.String("__class__"), starlark.String("user"),
		starlark.String("__struct__"), starlark.String("Elixir.Accounts.Member"),
	))
	require.NoError(t, err)
	mod, _ := got.(*term.Mapping).Get(term.StructKey())
	assert.Equal(t, "Elixir.Accounts.Member", mod.(term.Symbol).Name())
}

func TestStructConversionRequiresStringClass(t *testing.T) {
	_, err := Encode(dict(t, starlark.String("__class__"), starlark.MakeInt(1)))
	assert.ErrorIs(t, err, ErrEncoding)
}

func TestEncodeStarlarkStruct(t *testing.T) {
	s := starlarkstruct.FromStringDict(starlarkstruct.Default, starlark.StringDict{
		"__class__": starlark.String("point"),
		"a":         starlark.MakeInt(1),
	})
	got, err := New(WithPolicy(term.PolicyStrict)).Encode(s)
	require.NoError(t, err)
	m := got.(*term.Mapping)
	v, ok := m.Get(sym("a"))
	require.True(t, ok)
	assert.Equal(t, term.MakeInt(1), v)
	assert.True(t, m.IsStruct())
}

func TestEncodeUnknownValue(t *testing.T) {
	_, err := Encode(starlark.NewBuiltin("f", nil))
	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "builtin_function_or_method", encErr.Type)

	pair := std.EncodeTotal(starlark.NewBuiltin("f", nil))
	ep, ok := pair.(term.ErrorPair)
	require.True(t, ok)
	assert.Equal(t, term.ErrorSymbol(), ep.Kind)
}

func TestEncodeCycle(t *testing.T) {
	l := starlark.NewList(nil)
	require.NoError(t, l.Append(l))
	_, err := Encode(l)
	assert.ErrorIs(t, err, ErrEncoding)
}

type custom struct{ starlark.Value }

func (custom) MarshalTerm(*Codec) (term.Term, error) { return term.Bytes("custom"), nil }

func TestEncodeMarshaler(t *testing.T) {
	got, err := Encode(custom{starlark.None})
	require.NoError(t, err)
	assert.Equal(t, term.Bytes("custom"), got)
}

func TestDecode(t *testing.T) {
	v, err := Decode(term.NewMapping(
		term.Pair{Key: sym("name"), Value: term.Sequence{term.MakeInt(1), term.Nil{}}},
		term.Pair{Key: term.Sequence{term.MakeInt(1)}, Value: term.Float(2)},
	))
	require.NoError(t, err)
	d, ok := v.(*starlark.Dict)
	require.True(t, ok)

	got, found, err := d.Get(starlark.String("name"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "[1, None]", got.String())

	got, found, err = d.Get(starlark.Tuple{starlark.MakeInt(1)})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, starlark.Float(2), got)

	v, err = Decode(term.NewErrorPair("boom"))
	require.NoError(t, err)
	assert.Equal(t, `("error", "boom")`, v.String())
}

func TestDecodeRejectsMappingKey(t *testing.T) {
	_, err := Decode(term.NewMapping(term.Pair{Key: term.NewMapping(), Value: term.Nil{}}))
	assert.ErrorIs(t, err, ErrEncoding)
}

// encode(decode(t)) must reproduce t for non-struct terms.
func TestEncodeDecodeIdentity(t *testing.T) {
	huge, _ := new(big.Int).SetString("-99999999999999999999999", 10)
	c := New(WithPreserveSymbols())
	terms := []term.Term{
		term.Nil{},
		term.Bool(false),
		term.MakeInt(-3),
		term.MakeBigInt(huge),
		term.Float(0.25),
		term.Bytes("text"),
		sym("status"),
		term.Sequence{},
		term.Sequence{term.Bytes("a"), term.Sequence{sym("ok")}},
		term.NewMapping(
			term.Pair{Key: term.Bytes("k"), Value: term.MakeInt(1)},
			term.Pair{Key: sym("id"), Value: term.NewMapping()},
			term.Pair{Key: term.MakeInt(7), Value: term.Sequence{term.Nil{}}},
		),
	}
	for _, want := range terms {
		t.Run(want.String(), func(t *testing.T) {
			v, err := c.Decode(want)
			require.NoError(t, err)
			got, err := c.Encode(v)
			require.NoError(t, err)
			assert.True(t, term.Equal(want, got), "got %s", got)
		})
	}
}

// Without WithPreserveSymbols symbols reach the guest as str, so they come
// back as Bytes.
func TestDefaultCodecLowersSymbols(t *testing.T) {
	c := New()
	tests := []struct {
		in, want term.Term
	}{
		{sym("status"), term.Bytes("status")},
		{
			term.NewMapping(term.Pair{Key: sym("name"), Value: term.Bytes("x")}),
			term.NewMapping(term.Pair{Key: term.Bytes("name"), Value: term.Bytes("x")}),
		},
		{term.Sequence{sym("ok"), term.MakeInt(1)}, term.Sequence{term.Bytes("ok"), term.MakeInt(1)}},
		{term.NewErrorPair("boom"), term.Sequence{term.Bytes("error"), term.Bytes("boom")}},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			v, err := c.Decode(tt.in)
			require.NoError(t, err)
			got, err := c.Encode(v)
			require.NoError(t, err)
			assert.True(t, term.Equal(tt.want, got), "got %s", got)
			assert.False(t, term.Equal(tt.in, got))
		})
	}
}

func TestAtomBuiltin(t *testing.T) {
	thread := &starlark.Thread{Name: "test"}
	v, err := starlark.Call(thread, AtomBuiltin, starlark.Tuple{starlark.String("ok")}, nil)
	require.NoError(t, err)
	assert.Equal(t, NewAtom(term.OKSymbol()), v)

	_, err = starlark.Call(thread, AtomBuiltin, starlark.Tuple{starlark.String("whatever_this_is")}, nil)
	assert.ErrorIs(t, err, term.ErrUnsafeSymbol)
}
