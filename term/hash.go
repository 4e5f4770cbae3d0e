package term

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Hash returns a hash of t consistent with Equal: equal terms hash alike.
func Hash(t Term) uint64 {
	d := xxhash.New()
	writeHash(d, t)
	return d.Sum64()
}

func writeHash(d *xxhash.Digest, t Term) {
	var buf [9]byte
	word := func(tag byte, v uint64) {
		buf[0] = tag
		binary.LittleEndian.PutUint64(buf[1:], v)
		d.Write(buf[:])
	}
	text := func(tag byte, s string) {
		word(tag, uint64(len(s)))
		d.WriteString(s)
	}

	switch t := t.(type) {
	case Nil:
		word('n', 0)
	case Bool:
		if t {
			word('b', 1)
		} else {
			word('b', 0)
		}
	case Int:
		if t.big == nil {
			word('i', uint64(t.small))
		} else {
			text('I', t.big.String())
		}
	case Float:
		f := float64(t)
		switch {
		case math.IsNaN(f):
			word('f', 0x7ff8000000000001)
		case f == 0:
			word('f', 0)
		default:
			word('f', math.Float64bits(f))
		}
	case Bytes:
		text('y', string(t))
	case Symbol:
		text('s', t.name)
	case Sequence:
		word('l', uint64(len(t)))
		for _, e := range t {
			writeHash(d, e)
		}
	case *Mapping:
		// Pair order does not matter.
		var sum uint64
		for _, p := range t.pairs {
			pd := xxhash.New()
			writeHash(pd, p.Key)
			writeHash(pd, p.Value)
			sum += pd.Sum64()
		}
		word('m', uint64(t.Len()))
		word('m', sum)
	case ErrorPair:
		text('e', t.Kind.name)
		text('e', string(t.Detail))
	}
}
