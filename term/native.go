package term

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
)

// FromNative converts a plain Go value, as produced by encoding/json or
// gopkg.in/yaml.v3, into a Term. Map keys that are strings become Bytes.
func FromNative(v any) (Term, error) {
	switch v := v.(type) {
	case nil:
		return Nil{}, nil
	case Term:
		return v, nil
	case bool:
		return Bool(v), nil
	case int:
		return MakeInt(int64(v)), nil
	case int8:
		return MakeInt(int64(v)), nil
	case int16:
		return MakeInt(int64(v)), nil
	case int32:
		return MakeInt(int64(v)), nil
	case int64:
		return MakeInt(v), nil
	case uint:
		return MakeBigInt(new(big.Int).SetUint64(uint64(v))), nil
	case uint8:
		return MakeInt(int64(v)), nil
	case uint16:
		return MakeInt(int64(v)), nil
	case uint32:
		return MakeInt(int64(v)), nil
	case uint64:
		return MakeBigInt(new(big.Int).SetUint64(v)), nil
	case *big.Int:
		return MakeBigInt(v), nil
	case float32:
		return Float(v), nil
	case float64:
		return Float(v), nil
	case json.Number:
		if n, ok := new(big.Int).SetString(string(v), 10); ok {
			return MakeBigInt(n), nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %q: %w", v, err)
		}
		return Float(f), nil
	case string:
		return Bytes(v), nil
	case []byte:
		return Bytes(v), nil
	case []any:
		seq := make(Sequence, len(v))
		for i, e := range v {
			t, err := FromNative(e)
			if err != nil {
				return nil, err
			}
			seq[i] = t
		}
		return seq, nil
	case []string:
		seq := make(Sequence, len(v))
		for i, e := range v {
			seq[i] = Bytes(e)
		}
		return seq, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := &Mapping{pairs: make([]Pair, 0, len(v))}
		for _, k := range keys {
			t, err := FromNative(v[k])
			if err != nil {
				return nil, err
			}
			m.Put(Bytes(k), t)
		}
		return m, nil
	case map[any]any:
		m := &Mapping{pairs: make([]Pair, 0, len(v))}
		for k, e := range v {
			kt, err := FromNative(k)
			if err != nil {
				return nil, err
			}
			vt, err := FromNative(e)
			if err != nil {
				return nil, err
			}
			m.Put(kt, vt)
		}
		return m, nil
	}
	return nil, fmt.Errorf("no term for Go value of type %s", reflect.TypeOf(v))
}

// ToNative converts t into plain Go values suitable for encoding/json:
// Bytes and Symbols become strings, Mappings become map[string]any keyed by
// the key's text, big integers outside the float64 range stay *big.Int.
func ToNative(t Term) any {
	switch t := t.(type) {
	case Nil:
		return nil
	case Bool:
		return bool(t)
	case Int:
		if n, ok := t.Int64(); ok {
			return n
		}
		return t.BigInt()
	case Float:
		f := float64(t)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return t.String()
		}
		return f
	case Bytes:
		return string(t)
	case Symbol:
		return t.name
	case Sequence:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = ToNative(e)
		}
		return out
	case *Mapping:
		out := make(map[string]any, t.Len())
		for _, p := range t.pairs {
			out[KeyText(p.Key)] = ToNative(p.Value)
		}
		return out
	case ErrorPair:
		return map[string]any{"error": string(t.Detail)}
	}
	return nil
}

// KeyText returns the text of a mapping key: the content of Bytes, the name
// of a Symbol, the inspect form of anything else.
func KeyText(k Term) string {
	switch k := k.(type) {
	case Bytes:
		return string(k)
	case Symbol:
		return k.name
	}
	return k.String()
}
