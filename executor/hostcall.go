package executor

import (
	"context"
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/caffeineduck/termite/codec"
	"github.com/caffeineduck/termite/hostfunc"
	"github.com/caffeineduck/termite/term"
)

// HostModule is the predeclared name under which host functions appear.
const HostModule = "host"

// hostModule exposes every function of the registry as host.<name>(**kwargs).
func hostModule(ctx context.Context, registry *hostfunc.Registry, c *codec.Codec) *starlarkstruct.Module {
	members := make(starlark.StringDict)
	for _, name := range registry.List() {
		fn, ok := registry.Get(name)
		if !ok {
			continue
		}
		members[name] = starlark.NewBuiltin(name, hostCall(ctx, fn, c))
	}
	return &starlarkstruct.Module{Name: HostModule, Members: members}
}

func hostCall(ctx context.Context, fn hostfunc.Func, c *codec.Codec) func(*starlark.Thread, *starlark.Builtin, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(args) > 0 {
			return nil, fmt.Errorf("%s: host functions take keyword arguments only", b.Name())
		}
		in := make(map[string]any, len(kwargs))
		for _, kv := range kwargs {
			t, err := c.Encode(kv[1])
			if err != nil {
				return nil, fmt.Errorf("%s: argument %s: %w", b.Name(), kv[0], err)
			}
			in[string(kv[0].(starlark.String))] = term.ToNative(t)
		}
		out, err := fn(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name(), err)
		}
		t, err := term.FromNative(out)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name(), err)
		}
		return c.Decode(t)
	}
}
