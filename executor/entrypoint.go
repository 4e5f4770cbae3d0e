package executor

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"go.starlark.net/starlark"

	"github.com/caffeineduck/termite/term"
)

// Reserved binding names that request an entry point invocation.
const (
	BindingEntryMethod          = "__entry_method__"
	BindingEntryArgs            = "__entry_args__"
	BindingEntryConstructorArgs = "__entry_constructor_args__"
)

// EntryPoint asks the executor to construct an instance of the type defined
// by the snippet's last statement and call one of its methods:
//
//	instance = Type(*ConstructorArgs)
//	result = instance.Method(*Args)
//
// An empty Method yields Nil once the instance is built. The entry point is
// ignored unless the last statement is a def.
type EntryPoint struct {
	Method          string      `mapstructure:"__entry_method__"`
	Args            []term.Term `mapstructure:"__entry_args__"`
	ConstructorArgs []term.Term `mapstructure:"__entry_constructor_args__"`
}

// takeEntryPoint removes the reserved bindings from vars and decodes them.
// It returns nil when no method binding is present.
func takeEntryPoint(vars map[string]term.Term) (*EntryPoint, error) {
	if _, ok := vars[BindingEntryMethod]; !ok {
		for _, k := range []string{BindingEntryArgs, BindingEntryConstructorArgs} {
			delete(vars, k)
		}
		return nil, nil
	}
	raw := make(map[string]any, 3)
	for _, k := range []string{BindingEntryMethod, BindingEntryArgs, BindingEntryConstructorArgs} {
		v, ok := vars[k]
		if !ok {
			continue
		}
		delete(vars, k)
		switch v := v.(type) {
		case term.Nil:
		case term.Bytes:
			raw[k] = string(v)
		case term.Symbol:
			raw[k] = v.Name()
		case term.Sequence:
			raw[k] = []term.Term(v)
		default:
			return nil, fmt.Errorf("binding %s: unexpected %s", k, v)
		}
	}
	var ep EntryPoint
	if err := mapstructure.Decode(raw, &ep); err != nil {
		return nil, fmt.Errorf("decode entry point: %w", err)
	}
	return &ep, nil
}

// callEntryPoint builds the instance and invokes the method.
func (inv *invocation) callEntryPoint(ctor starlark.Value, ep *EntryPoint) (starlark.Value, error) {
	ctorArgs, err := inv.decodeArgs(ep.ConstructorArgs)
	if err != nil {
		return nil, err
	}
	instance, err := starlark.Call(inv.thread, ctor, ctorArgs, nil)
	if err != nil {
		return nil, err
	}
	if ep.Method == "" {
		return starlark.None, nil
	}

	method, err := lookupMethod(instance, ep.Method)
	if err != nil {
		return nil, err
	}
	args, err := inv.decodeArgs(ep.Args)
	if err != nil {
		return nil, err
	}
	return starlark.Call(inv.thread, method, args, nil)
}

func lookupMethod(instance starlark.Value, name string) (starlark.Value, error) {
	if d, ok := instance.(*starlark.Dict); ok {
		m, found, err := d.Get(starlark.String(name))
		if err != nil {
			return nil, err
		}
		if found {
			return m, nil
		}
	} else if x, ok := instance.(starlark.HasAttrs); ok {
		m, err := x.Attr(name)
		if err != nil {
			return nil, err
		}
		if m != nil {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%s has no .%s field or method", instance.Type(), name)
}

func (inv *invocation) decodeArgs(terms []term.Term) (starlark.Tuple, error) {
	args := make(starlark.Tuple, len(terms))
	for i, t := range terms {
		v, err := inv.codec.Decode(t)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}
