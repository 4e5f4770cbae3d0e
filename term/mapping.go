package term

import "strings"

// Pair is one entry of a Mapping.
type Pair struct {
	Key   Term
	Value Term
}

// Mapping is an associative collection with unique keys. Iteration follows
// insertion order, equality ignores it.
type Mapping struct {
	pairs []Pair
	index map[uint64][]int // Hash(key) => positions in pairs
}

// NewMapping returns a mapping holding pairs. Later pairs overwrite earlier
// ones with an equal key.
func NewMapping(pairs ...Pair) *Mapping {
	m := &Mapping{pairs: make([]Pair, 0, len(pairs))}
	for _, p := range pairs {
		m.Put(p.Key, p.Value)
	}
	return m
}

// Put sets key to value, replacing the value of an equal key.
func (m *Mapping) Put(key, value Term) {
	h := Hash(key)
	if i := m.find(h, key); i >= 0 {
		m.pairs[i].Value = value
		return
	}
	if m.index == nil {
		m.index = make(map[uint64][]int, cap(m.pairs))
	}
	m.index[h] = append(m.index[h], len(m.pairs))
	m.pairs = append(m.pairs, Pair{Key: key, Value: value})
}

// Get returns the value stored under key.
func (m *Mapping) Get(key Term) (Term, bool) {
	if m == nil || len(m.pairs) == 0 {
		return nil, false
	}
	if i := m.find(Hash(key), key); i >= 0 {
		return m.pairs[i].Value, true
	}
	return nil, false
}

func (m *Mapping) find(h uint64, key Term) int {
	for _, i := range m.index[h] {
		if Equal(m.pairs[i].Key, key) {
			return i
		}
	}
	return -1
}

// GetString is Get for a Bytes or Symbol key spelled name.
func (m *Mapping) GetString(name string) (Term, bool) {
	if v, ok := m.Get(Bytes(name)); ok {
		return v, true
	}
	if s, err := Intern(name); err == nil {
		return m.Get(s)
	}
	return nil, false
}

// Delete removes key and reports whether it was present.
func (m *Mapping) Delete(key Term) bool {
	i := m.find(Hash(key), key)
	if i < 0 {
		return false
	}
	m.pairs = append(m.pairs[:i], m.pairs[i+1:]...)
	m.index = make(map[uint64][]int, len(m.pairs))
	for j, p := range m.pairs {
		h := Hash(p.Key)
		m.index[h] = append(m.index[h], j)
	}
	return true
}

// Len returns the number of pairs.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.pairs)
}

// Pairs returns a copy of the pairs in insertion order.
func (m *Mapping) Pairs() []Pair {
	if m == nil {
		return nil
	}
	out := make([]Pair, len(m.pairs))
	copy(out, m.pairs)
	return out
}

// IsStruct reports whether the mapping carries a __struct__ entry.
func (m *Mapping) IsStruct() bool {
	_, ok := m.Get(symStruct)
	return ok
}

func (m *Mapping) String() string {
	var sb strings.Builder
	if mod, ok := m.Get(symStruct); ok {
		sb.WriteString("%")
		sb.WriteString(mod.String())
	} else {
		sb.WriteString("%")
	}
	sb.WriteString("{")
	first := true
	for _, p := range m.pairs {
		if Equal(p.Key, symStruct) {
			continue
		}
		if !first {
			sb.WriteString(", ")
		}
		first = false
		if s, ok := p.Key.(Symbol); ok && isPlainAtom(s.name) {
			sb.WriteString(s.name)
			sb.WriteString(": ")
		} else {
			sb.WriteString(p.Key.String())
			sb.WriteString(" => ")
		}
		sb.WriteString(p.Value.String())
	}
	sb.WriteString("}")
	return sb.String()
}
