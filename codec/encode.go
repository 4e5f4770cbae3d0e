package codec

import (
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/caffeineduck/termite/term"
)

// Marshaler is implemented by guest values that know their own term form.
type Marshaler interface {
	MarshalTerm(c *Codec) (term.Term, error)
}

// Encode converts v to a Term. It fails with *EncodingError for values
// without a term form and with *term.UnsafeSymbolError when a struct field
// is rejected under the strict policy.
func (c *Codec) Encode(v starlark.Value) (term.Term, error) {
	return c.encode(v, 0)
}

// EncodeTotal is Encode with failures folded into an ErrorPair.
func (c *Codec) EncodeTotal(v starlark.Value) term.Term {
	t, err := c.Encode(v)
	if err != nil {
		return term.NewErrorPair(err.Error())
	}
	return t
}

func (c *Codec) encode(v starlark.Value, depth int) (term.Term, error) {
	if depth > maxDepth {
		return nil, &EncodingError{Type: v.Type(), Reason: "nested too deeply"}
	}
	switch v := v.(type) {
	case starlark.NoneType:
		return term.Nil{}, nil
	case starlark.Bool:
		return term.Bool(v), nil
	case starlark.Int:
		if n, ok := v.Int64(); ok {
			return term.MakeInt(n), nil
		}
		return term.MakeBigInt(v.BigInt()), nil
	case starlark.Float:
		return term.Float(v), nil
	case starlark.String:
		return term.Bytes(v), nil
	case starlark.Bytes:
		return term.Bytes(v), nil
	case Atom:
		return v.sym, nil
	case *starlark.List:
		return c.encodeIterable(v, v.Len(), depth)
	case starlark.Tuple:
		return c.encodeIterable(v, v.Len(), depth)
	case *starlark.Set:
		return c.encodeIterable(v, v.Len(), depth)
	case *starlark.Dict:
		return c.encodeEntries(v.Items(), depth)
	case *starlarkstruct.Struct:
		names := v.AttrNames()
		items := make([]starlark.Tuple, 0, len(names))
		for _, name := range names {
			fv, err := v.Attr(name)
			if err != nil {
				return nil, err
			}
			items = append(items, starlark.Tuple{starlark.String(name), fv})
		}
		return c.encodeEntries(items, depth)
	case Marshaler:
		return v.MarshalTerm(c)
	}
	return nil, &EncodingError{Type: v.Type()}
}

func (c *Codec) encodeIterable(v starlark.Iterable, n, depth int) (term.Term, error) {
	seq := make(term.Sequence, 0, n)
	iter := v.Iterate()
	defer iter.Done()
	var x starlark.Value
	for iter.Next(&x) {
		t, err := c.encode(x, depth+1)
		if err != nil {
			return nil, err
		}
		seq = append(seq, t)
	}
	return seq, nil
}

const classKey = "__class__"

func (c *Codec) encodeEntries(items []starlark.Tuple, depth int) (term.Term, error) {
	for _, kv := range items {
		if k, ok := kv[0].(starlark.String); ok && k == classKey {
			return c.encodeStruct(kv[1], items, depth)
		}
	}
	m := term.NewMapping()
	for _, kv := range items {
		k, err := c.encode(kv[0], depth+1)
		if err != nil {
			return nil, err
		}
		val, err := c.encode(kv[1], depth+1)
		if err != nil {
			return nil, err
		}
		m.Put(k, val)
	}
	return m, nil
}

func (c *Codec) encodeStruct(class starlark.Value, items []starlark.Tuple, depth int) (term.Term, error) {
	name, ok := class.(starlark.String)
	if !ok {
		return nil, &EncodingError{Type: class.Type(), Reason: "__class__ must be a string"}
	}
	m := term.NewMapping()
	for _, kv := range items {
		key := kv[0]
		if key == starlark.String(classKey) {
			continue
		}
		var k term.Term
		var err error
		if s, ok := key.(starlark.String); ok {
			k, err = c.policy.Key(string(s))
		} else {
			k, err = c.encode(key, depth+1)
		}
		if err != nil {
			return nil, err
		}
		var val term.Term
		if term.Equal(k, term.StructKey()) {
			val, err = c.structModule(kv[1], depth)
		} else {
			val, err = c.encode(kv[1], depth+1)
		}
		if err != nil {
			return nil, err
		}
		m.Put(k, val)
	}
	if !m.IsStruct() {
		m.Put(term.StructKey(), term.StructModule(string(name)))
	}
	return m, nil
}

// structModule encodes an explicit __struct__ value: a fully qualified
// module name in a string becomes the module symbol as written.
func (c *Codec) structModule(v starlark.Value, depth int) (term.Term, error) {
	if s, ok := v.(starlark.String); ok {
		if sym, err := term.ModuleSymbol(string(s)); err == nil {
			return sym, nil
		}
	}
	return c.encode(v, depth+1)
}
