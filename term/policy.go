package term

import "fmt"

// SymbolPolicy selects what happens when a name cannot become a Symbol.
type SymbolPolicy int

const (
	// PolicyPermissive degrades a rejected name to Bytes.
	PolicyPermissive SymbolPolicy = iota
	// PolicyStrict reports a rejected name as *UnsafeSymbolError.
	PolicyStrict
)

// Key converts name to a mapping key under the policy.
func (p SymbolPolicy) Key(name string) (Term, error) {
	s, err := Intern(name)
	if err == nil {
		return s, nil
	}
	if p == PolicyStrict {
		return nil, err
	}
	return Bytes(name), nil
}

func (p SymbolPolicy) String() string {
	switch p {
	case PolicyPermissive:
		return "permissive"
	case PolicyStrict:
		return "strict"
	}
	return fmt.Sprintf("SymbolPolicy(%d)", int(p))
}

// ParsePolicy parses "strict" or "permissive".
func ParsePolicy(s string) (SymbolPolicy, error) {
	switch s {
	case "permissive":
		return PolicyPermissive, nil
	case "strict":
		return PolicyStrict, nil
	}
	return 0, fmt.Errorf("unknown symbol policy %q", s)
}
