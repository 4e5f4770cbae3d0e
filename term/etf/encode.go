package etf

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"

	"github.com/caffeineduck/termite/term"
)

// Marshal returns the external format of v. v is a term.Term, a Tuple or an
// Atom; tuples may nest any of the three.
func Marshal(v any) ([]byte, error) {
	buf := []byte{Version}
	return appendValue(buf, v)
}

func appendValue(buf []byte, v any) ([]byte, error) {
	switch v := v.(type) {
	case Tuple:
		buf = appendTupleHeader(buf, len(v))
		var err error
		for _, e := range v {
			if buf, err = appendValue(buf, e); err != nil {
				return nil, err
			}
		}
		return buf, nil
	case Atom:
		return appendAtom(buf, string(v))
	case term.Term:
		return appendTerm(buf, v)
	}
	return nil, fmt.Errorf("etf: cannot encode %T", v)
}

func appendTerm(buf []byte, t term.Term) ([]byte, error) {
	switch t := t.(type) {
	case term.Nil:
		return appendAtom(buf, "nil")
	case term.Bool:
		if t {
			return appendAtom(buf, "true")
		}
		return appendAtom(buf, "false")
	case term.Int:
		return appendInt(buf, t), nil
	case term.Float:
		buf = append(buf, tagNewFloat)
		return binary.BigEndian.AppendUint64(buf, math.Float64bits(float64(t))), nil
	case term.Bytes:
		buf = append(buf, tagBinary)
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(t)))
		return append(buf, string(t)...), nil
	case term.Symbol:
		if t.IsZero() {
			return nil, fmt.Errorf("etf: zero symbol")
		}
		return appendAtom(buf, t.Name())
	case term.Sequence:
		if len(t) == 0 {
			return append(buf, tagNil), nil
		}
		buf = append(buf, tagList)
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(t)))
		var err error
		for _, e := range t {
			if buf, err = appendTerm(buf, e); err != nil {
				return nil, err
			}
		}
		return append(buf, tagNil), nil
	case *term.Mapping:
		pairs := t.Pairs()
		buf = append(buf, tagMap)
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(pairs)))
		var err error
		for _, p := range pairs {
			if buf, err = appendTerm(buf, p.Key); err != nil {
				return nil, err
			}
			if buf, err = appendTerm(buf, p.Value); err != nil {
				return nil, err
			}
		}
		return buf, nil
	case term.ErrorPair:
		buf = appendTupleHeader(buf, 2)
		buf, _ = appendAtom(buf, t.Kind.Name())
		return appendTerm(buf, t.Detail)
	}
	return nil, fmt.Errorf("etf: cannot encode term %T", t)
}

func appendTupleHeader(buf []byte, n int) []byte {
	if n <= math.MaxUint8 {
		return append(buf, tagSmallTuple, byte(n))
	}
	buf = append(buf, tagLargeTuple)
	return binary.BigEndian.AppendUint32(buf, uint32(n))
}

func appendAtom(buf []byte, name string) ([]byte, error) {
	switch {
	case len(name) <= math.MaxUint8:
		buf = append(buf, tagSmallAtomUTF8, byte(len(name)))
	case len(name) <= math.MaxUint16:
		buf = append(buf, tagAtomUTF8)
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(name)))
	default:
		return nil, fmt.Errorf("etf: atom too long (%d bytes)", len(name))
	}
	return append(buf, name...), nil
}

func appendInt(buf []byte, i term.Int) []byte {
	if n, ok := i.Int64(); ok {
		switch {
		case n >= 0 && n <= math.MaxUint8:
			return append(buf, tagSmallInteger, byte(n))
		case n >= math.MinInt32 && n <= math.MaxInt32:
			buf = append(buf, tagInteger)
			return binary.BigEndian.AppendUint32(buf, uint32(int32(n)))
		}
	}
	b := i.BigInt()
	var sign byte
	if b.Sign() < 0 {
		sign = 1
		b.Neg(b)
	}
	digits := littleEndian(b)
	if len(digits) <= math.MaxUint8 {
		buf = append(buf, tagSmallBig, byte(len(digits)))
	} else {
		buf = append(buf, tagLargeBig)
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(digits)))
	}
	buf = append(buf, sign)
	return append(buf, digits...)
}

func littleEndian(b *big.Int) []byte {
	be := b.Bytes()
	for i, j := 0, len(be)-1; i < j; i, j = i+1, j-1 {
		be[i], be[j] = be[j], be[i]
	}
	return be
}
