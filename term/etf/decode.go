package etf

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/caffeineduck/termite/term"
)

// maxDepth bounds nesting so hostile input cannot exhaust the stack.
const maxDepth = 512

// Unmarshal decodes one term in external format. Trailing bytes are an
// error.
func Unmarshal(data []byte) (term.Term, error) {
	if len(data) == 0 || data[0] != Version {
		return nil, ErrVersion
	}
	d := &decoder{buf: data[1:]}
	t, err := d.term(0)
	if err != nil {
		return nil, err
	}
	if len(d.buf) != 0 {
		return nil, fmt.Errorf("etf: %d trailing bytes", len(d.buf))
	}
	return t, nil
}

type decoder struct {
	buf []byte
}

func (d *decoder) take(n int) ([]byte, error) {
	if n < 0 || n > len(d.buf) {
		return nil, ErrTruncated
	}
	b := d.buf[:n]
	d.buf = d.buf[n:]
	return b, nil
}

func (d *decoder) u8() (int, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return int(b[0]), nil
}

func (d *decoder) u16() (int, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint16(b)), nil
}

func (d *decoder) u32() (int, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	n := binary.BigEndian.Uint32(b)
	if int64(n) > int64(len(d.buf)) {
		// every element needs at least one byte
		return 0, ErrTruncated
	}
	return int(n), nil
}

func (d *decoder) term(depth int) (term.Term, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("etf: nesting deeper than %d", maxDepth)
	}
	tag, err := d.u8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagSmallInteger:
		n, err := d.u8()
		if err != nil {
			return nil, err
		}
		return term.MakeInt(int64(n)), nil
	case tagInteger:
		b, err := d.take(4)
		if err != nil {
			return nil, err
		}
		return term.MakeInt(int64(int32(binary.BigEndian.Uint32(b)))), nil
	case tagSmallBig, tagLargeBig:
		var n int
		if tag == tagSmallBig {
			n, err = d.u8()
		} else {
			n, err = d.u32()
		}
		if err != nil {
			return nil, err
		}
		return d.bigInt(n)
	case tagNewFloat:
		b, err := d.take(8)
		if err != nil {
			return nil, err
		}
		return term.Float(math.Float64frombits(binary.BigEndian.Uint64(b))), nil
	case tagFloat:
		b, err := d.take(31)
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(strings.TrimRight(string(b), "\x00"), 64)
		if err != nil {
			return nil, fmt.Errorf("etf: bad float: %w", err)
		}
		return term.Float(f), nil
	case tagAtom, tagAtomUTF8:
		n, err := d.u16()
		if err != nil {
			return nil, err
		}
		return d.atom(n, tag == tagAtom)
	case tagSmallAtom, tagSmallAtomUTF8:
		n, err := d.u8()
		if err != nil {
			return nil, err
		}
		return d.atom(n, tag == tagSmallAtom)
	case tagBinary:
		n, err := d.u32()
		if err != nil {
			return nil, err
		}
		b, err := d.take(n)
		if err != nil {
			return nil, err
		}
		return term.Bytes(b), nil
	case tagSmallTuple, tagLargeTuple:
		var n int
		if tag == tagSmallTuple {
			n, err = d.u8()
		} else {
			n, err = d.u32()
		}
		if err != nil {
			return nil, err
		}
		return d.tuple(n, depth)
	case tagNil:
		return term.Sequence{}, nil
	case tagString:
		n, err := d.u16()
		if err != nil {
			return nil, err
		}
		b, err := d.take(n)
		if err != nil {
			return nil, err
		}
		seq := make(term.Sequence, n)
		for i, c := range b {
			seq[i] = term.MakeInt(int64(c))
		}
		return seq, nil
	case tagList:
		n, err := d.u32()
		if err != nil {
			return nil, err
		}
		seq := make(term.Sequence, n)
		for i := range seq {
			if seq[i], err = d.term(depth + 1); err != nil {
				return nil, err
			}
		}
		tail, err := d.u8()
		if err != nil {
			return nil, err
		}
		if tail != tagNil {
			return nil, fmt.Errorf("etf: improper lists are not supported")
		}
		return seq, nil
	case tagMap:
		n, err := d.u32()
		if err != nil {
			return nil, err
		}
		pairs := make([]term.Pair, n)
		for i := range pairs {
			if pairs[i].Key, err = d.term(depth + 1); err != nil {
				return nil, err
			}
			if pairs[i].Value, err = d.term(depth + 1); err != nil {
				return nil, err
			}
		}
		return term.NewMapping(pairs...), nil
	}
	return nil, fmt.Errorf("etf: unsupported tag %d", tag)
}

func (d *decoder) bigInt(n int) (term.Term, error) {
	sign, err := d.u8()
	if err != nil {
		return nil, err
	}
	le, err := d.take(n)
	if err != nil {
		return nil, err
	}
	be := make([]byte, n)
	for i, c := range le {
		be[n-1-i] = c
	}
	b := new(big.Int).SetBytes(be)
	if sign != 0 {
		b.Neg(b)
	}
	return term.MakeBigInt(b), nil
}

func (d *decoder) atom(n int, latin1 bool) (term.Term, error) {
	b, err := d.take(n)
	if err != nil {
		return nil, err
	}
	name := string(b)
	if latin1 && !utf8.Valid(b) {
		r := make([]rune, len(b))
		for i, c := range b {
			r[i] = rune(c)
		}
		name = string(r)
	}
	return atomTerm(name), nil
}

// atomTerm maps an atom name onto the Term model without growing the symbol
// table beyond the allowlist.
func atomTerm(name string) term.Term {
	switch name {
	case "nil":
		return term.Nil{}
	case "true":
		return term.Bool(true)
	case "false":
		return term.Bool(false)
	}
	if s, err := term.Intern(name); err == nil {
		return s
	}
	if s, err := term.ModuleSymbol(name); err == nil {
		return s
	}
	return term.Bytes(name)
}

func (d *decoder) tuple(n, depth int) (term.Term, error) {
	seq := make(term.Sequence, n)
	var err error
	for i := range seq {
		if seq[i], err = d.term(depth + 1); err != nil {
			return nil, err
		}
	}
	if n == 2 {
		if kind, ok := seq[0].(term.Symbol); ok && kind == term.ErrorSymbol() {
			if detail, ok := seq[1].(term.Bytes); ok {
				return term.ErrorPair{Kind: kind, Detail: detail}, nil
			}
		}
	}
	return seq, nil
}
