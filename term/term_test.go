package term

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntern(t *testing.T) {
	s, err := Intern("name")
	require.NoError(t, err)
	assert.Equal(t, "name", s.Name())

	_, err = Intern("definitely_not_allowed")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsafeSymbol))

	var unsafe *UnsafeSymbolError
	require.True(t, errors.As(err, &unsafe))
	assert.Equal(t, "definitely_not_allowed", unsafe.Name)
}

func TestAllowlistCoversStructuralNames(t *testing.T) {
	for _, n := range []string{"__struct__", "nil", "true", "false", "ok", "error", "input_schema", "output_schema", "a", "Z"} {
		assert.True(t, Allowed(n), n)
	}
	assert.False(t, Allowed(""))
	assert.False(t, Allowed("__class__"))
}

func TestAllowlistCoversLetters(t *testing.T) {
	for c := 'a'; c <= 'z'; c++ {
		assert.True(t, Allowed(string(c)), string(c))
		assert.True(t, Allowed(strings.ToUpper(string(c))), strings.ToUpper(string(c)))
	}
	k, err := PolicyStrict.Key("x")
	require.NoError(t, err)
	assert.Equal(t, MustIntern("x"), k)
}

func TestPolicyKey(t *testing.T) {
	k, err := PolicyStrict.Key("name")
	require.NoError(t, err)
	assert.Equal(t, MustIntern("name"), k)

	_, err = PolicyStrict.Key("nickname")
	assert.ErrorIs(t, err, ErrUnsafeSymbol)

	k, err = PolicyPermissive.Key("nickname")
	require.NoError(t, err)
	assert.Equal(t, Bytes("nickname"), k)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("strict")
	require.NoError(t, err)
	assert.Equal(t, PolicyStrict, p)
	assert.Equal(t, "permissive", PolicyPermissive.String())

	_, err = ParsePolicy("lenient")
	assert.Error(t, err)
}

func TestStructModule(t *testing.T) {
	tests := []struct {
		class string
		want  string
	}{
		{"user", "Elixir.User"},
		{"data.types.point", "Elixir.Data.Types.Point"},
		{"HTTP", "Elixir.Http"},
		{"termite.handler", "Elixir.Termite.Handler"},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			assert.Equal(t, tt.want, StructModule(tt.class).Name())
		})
	}
}

func TestModuleSymbol(t *testing.T) {
	s, err := ModuleSymbol("Elixir.Data.Point")
	require.NoError(t, err)
	assert.Equal(t, "Elixir.Data.Point", s.Name())

	_, err = ModuleSymbol("Data.Point")
	assert.ErrorIs(t, err, ErrUnsafeSymbol)
	_, err = ModuleSymbol("Elixir.")
	assert.ErrorIs(t, err, ErrUnsafeSymbol)
}

func TestMakeBigIntNormalizes(t *testing.T) {
	n, ok := MakeBigInt(big.NewInt(42)).Int64()
	require.True(t, ok)
	assert.Equal(t, int64(42), n)

	huge, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	i := MakeBigInt(huge)
	_, ok = i.Int64()
	assert.False(t, ok)
	assert.Equal(t, "123456789012345678901234567890", i.String())
	assert.Equal(t, 1, i.Sign())
	assert.True(t, Equal(i, MakeBigInt(huge)))
}

func TestEqual(t *testing.T) {
	a := NewMapping(
		Pair{Bytes("a"), MakeInt(1)},
		Pair{MustIntern("name"), Sequence{Float(1.5), Nil{}}},
	)
	b := NewMapping(
		Pair{MustIntern("name"), Sequence{Float(1.5), Nil{}}},
		Pair{Bytes("a"), MakeInt(1)},
	)
	assert.True(t, Equal(a, b))
	assert.True(t, Equal(Float(math.NaN()), Float(math.NaN())))
	assert.False(t, Equal(MakeInt(1), Float(1)))
	assert.False(t, Equal(Bytes("name"), MustIntern("name")))
	assert.False(t, Equal(Sequence{MakeInt(1)}, Sequence{MakeInt(1), MakeInt(2)}))
	assert.True(t, Equal(NewErrorPair("boom"), NewErrorPair("boom")))
	assert.False(t, Equal(NewErrorPair("boom"), NewErrorPair("bang")))
}

func TestMappingLastWriteWins(t *testing.T) {
	m := NewMapping(
		Pair{Bytes("k"), MakeInt(1)},
		Pair{Bytes("k"), MakeInt(2)},
	)
	require.Equal(t, 1, m.Len())
	v, ok := m.Get(Bytes("k"))
	require.True(t, ok)
	assert.Equal(t, MakeInt(2), v)

	assert.True(t, m.Delete(Bytes("k")))
	assert.False(t, m.Delete(Bytes("k")))
	assert.Equal(t, 0, m.Len())
}

func TestHashFollowsEqual(t *testing.T) {
	pairs := [][2]Term{
		{NewMapping(Pair{Bytes("a"), MakeInt(1)}, Pair{Bytes("b"), Nil{}}), NewMapping(Pair{Bytes("b"), Nil{}}, Pair{Bytes("a"), MakeInt(1)})},
		{Float(math.NaN()), Float(math.NaN())},
		{Float(0), Float(math.Copysign(0, -1))},
		{MakeBigInt(big.NewInt(7)), MakeInt(7)},
		{Sequence{Bytes("x"), MustIntern("ok")}, Sequence{Bytes("x"), MustIntern("ok")}},
		{NewErrorPair("boom"), NewErrorPair("boom")},
	}
	for _, p := range pairs {
		require.True(t, Equal(p[0], p[1]), "%s == %s", p[0], p[1])
		assert.Equal(t, Hash(p[0]), Hash(p[1]), "%s", p[0])
	}
	assert.NotEqual(t, Hash(Bytes("name")), Hash(MustIntern("name")))
}

func TestMappingLarge(t *testing.T) {
	const n = 50000
	m := NewMapping()
	for i := 0; i < n; i++ {
		m.Put(MakeInt(int64(i)), MakeInt(int64(i)))
	}
	for i := 0; i < n; i += 2 {
		m.Put(MakeInt(int64(i)), Bytes("even"))
	}
	require.Equal(t, n, m.Len())

	v, ok := m.Get(MakeInt(n - 2))
	require.True(t, ok)
	assert.Equal(t, Bytes("even"), v)
	v, ok = m.Get(MakeInt(n - 1))
	require.True(t, ok)
	assert.Equal(t, MakeInt(n-1), v)
	_, ok = m.Get(MakeInt(n))
	assert.False(t, ok)

	assert.True(t, m.Delete(MakeInt(0)))
	v, ok = m.Get(MakeInt(1))
	require.True(t, ok)
	assert.Equal(t, MakeInt(1), v)
	assert.Equal(t, MakeInt(1), m.Pairs()[0].Key)
}

func TestString(t *testing.T) {
	m := NewMapping(
		Pair{StructKey(), StructModule("user")},
		Pair{MustIntern("name"), Bytes("Alice")},
		Pair{Bytes("raw key"), Float(2)},
	)
	assert.Equal(t, `%User{name: "Alice", "raw key" => 2.0}`, m.String())
	assert.Equal(t, `[1, nil, true]`, Sequence{MakeInt(1), Nil{}, Bool(true)}.String())
	assert.Equal(t, `{:error, "boom"}`, NewErrorPair("boom").String())
	assert.Equal(t, `<<255, 0>>`, Bytes("\xff\x00").String())
}

func TestFromNativeJSON(t *testing.T) {
	dec := json.NewDecoder(strings.NewReader(`{"b": [1, 2.5, "x", null, true], "a": 12345678901234567890123}`))
	dec.UseNumber()
	var v any
	require.NoError(t, dec.Decode(&v))

	got, err := FromNative(v)
	require.NoError(t, err)

	huge, _ := new(big.Int).SetString("12345678901234567890123", 10)
	want := NewMapping(
		Pair{Bytes("a"), MakeBigInt(huge)},
		Pair{Bytes("b"), Sequence{MakeInt(1), Float(2.5), Bytes("x"), Nil{}, Bool(true)}},
	)
	assert.True(t, Equal(want, got), "got %s", got)
}

func TestFromNativeRejectsUnknown(t *testing.T) {
	_, err := FromNative(struct{}{})
	assert.Error(t, err)
}

func TestToNative(t *testing.T) {
	m := NewMapping(
		Pair{MustIntern("name"), Bytes("Alice")},
		Pair{MakeInt(1), Sequence{Nil{}, Float(0.5)}},
		Pair{Bytes("err"), NewErrorPair("boom")},
	)
	assert.Equal(t, map[string]any{
		"name": "Alice",
		"1":    []any{nil, 0.5},
		"err":  map[string]any{"error": "boom"},
	}, ToNative(m))
}
