package codec

import (
	"go.starlark.net/starlark"

	"github.com/caffeineduck/termite/term"
)

// Decode converts t to a Starlark value. The only failure is a term that
// cannot be a dict key, such as a Mapping used as a key.
func (c *Codec) Decode(t term.Term) (starlark.Value, error) {
	return c.decode(t, false)
}

// DecodeMapping decodes m into a StringDict keyed by the text of each key.
func (c *Codec) DecodeMapping(m *term.Mapping) (starlark.StringDict, error) {
	out := make(starlark.StringDict, m.Len())
	for _, p := range m.Pairs() {
		v, err := c.decode(p.Value, false)
		if err != nil {
			return nil, err
		}
		out[term.KeyText(p.Key)] = v
	}
	return out, nil
}

func (c *Codec) decode(t term.Term, asKey bool) (starlark.Value, error) {
	switch t := t.(type) {
	case term.Nil:
		return starlark.None, nil
	case term.Bool:
		return starlark.Bool(t), nil
	case term.Int:
		if n, ok := t.Int64(); ok {
			return starlark.MakeInt64(n), nil
		}
		return starlark.MakeBigInt(t.BigInt()), nil
	case term.Float:
		return starlark.Float(t), nil
	case term.Bytes:
		return starlark.String(t), nil
	case term.Symbol:
		if c.preserveSymbols {
			return NewAtom(t), nil
		}
		return starlark.String(t.Name()), nil
	case term.Sequence:
		elems := make([]starlark.Value, len(t))
		for i, e := range t {
			v, err := c.decode(e, asKey)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		if asKey {
			return starlark.Tuple(elems), nil
		}
		return starlark.NewList(elems), nil
	case *term.Mapping:
		if asKey {
			return nil, &EncodingError{Type: "map", Reason: "unhashable dict key"}
		}
		d := starlark.NewDict(t.Len())
		for _, p := range t.Pairs() {
			k, err := c.decode(p.Key, true)
			if err != nil {
				return nil, err
			}
			v, err := c.decode(p.Value, false)
			if err != nil {
				return nil, err
			}
			if err := d.SetKey(k, v); err != nil {
				return nil, &EncodingError{Type: k.Type(), Reason: err.Error()}
			}
		}
		return d, nil
	case term.ErrorPair:
		var kind starlark.Value = starlark.String(t.Kind.Name())
		if c.preserveSymbols {
			kind = NewAtom(t.Kind)
		}
		return starlark.Tuple{kind, starlark.String(t.Detail)}, nil
	}
	return nil, &EncodingError{Type: "term", Reason: "unknown term"}
}
