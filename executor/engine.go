package executor

import (
	"context"
	"fmt"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/caffeineduck/termite/codec"
	"github.com/caffeineduck/termite/term"
)

// ContextKey is the thread-local key holding the run's context.Context.
const ContextKey = "termite.context"

// invocation is the state of one run. It is never shared.
type invocation struct {
	codec   *codec.Codec
	thread  *starlark.Thread
	globals starlark.StringDict
}

func (e *Executor) execute(ctx context.Context, lang Language, code string, bindings term.Term, cfg runConfig, out *strings.Builder) (term.Term, error) {
	f, err := parse(lang, cfg.filename, code)
	if err != nil {
		return nil, err
	}
	c := newCodec(cfg)

	vars, err := bindingTerms(bindings)
	if err != nil {
		return nil, &Error{Kind: KindEncoding, Category: CategoryEncoding, Detail: err.Error(), Cause: err}
	}
	entry, err := takeEntryPoint(vars)
	if err != nil {
		return nil, &Error{Kind: KindEncoding, Category: CategoryEncoding, Detail: err.Error(), Cause: err}
	}
	if cfg.entry != nil {
		entry = cfg.entry
	}

	predeclared := lang.Predeclared()
	globals := make(starlark.StringDict, len(predeclared)+len(vars)+1)
	for name, v := range predeclared {
		globals[name] = v
	}
	for name, t := range vars {
		v, err := c.Decode(t)
		if err != nil {
			return nil, &Error{Kind: KindEncoding, Category: CategoryEncoding, Detail: fmt.Sprintf("binding %s: %v", name, err), Cause: err}
		}
		globals[name] = v
	}
	return e.evaluate(ctx, lang, f, c, globals, entry, cfg, out)
}

func parse(lang Language, filename, code string) (*syntax.File, error) {
	opts := lang.FileOptions()
	if opts == nil {
		opts = &syntax.FileOptions{}
	}
	f, err := opts.Parse(filename, code, 0)
	if err != nil {
		return nil, parseError(err)
	}
	return f, nil
}

func newCodec(cfg runConfig) *codec.Codec {
	opts := []codec.Option{codec.WithPolicy(cfg.policy)}
	if cfg.preserveSymbols {
		opts = append(opts, codec.WithPreserveSymbols())
	}
	return codec.New(opts...)
}

// evaluate runs f against globals on a fresh thread and encodes the value.
// globals receives every top-level assignment, even when the run fails.
func (e *Executor) evaluate(ctx context.Context, lang Language, f *syntax.File, c *codec.Codec, globals starlark.StringDict, entry *EntryPoint, cfg runConfig, out *strings.Builder) (term.Term, error) {
	globals[HostModule] = hostModule(ctx, e.registry, c)

	thread := &starlark.Thread{
		Name: cfg.filename,
		Print: func(_ *starlark.Thread, msg string) {
			out.WriteString(msg)
			out.WriteByte('\n')
		},
	}
	if catalog := lang.Packages(); catalog != nil {
		thread.Load = catalog.Load
	}
	if cfg.maxSteps > 0 {
		thread.SetMaxExecutionSteps(cfg.maxSteps)
	}
	thread.SetLocal(ContextKey, ctx)
	stop := context.AfterFunc(ctx, func() {
		thread.Cancel(context.Cause(ctx).Error())
	})
	defer stop()

	inv := &invocation{codec: c, thread: thread, globals: globals}
	v, err := inv.run(f, entry)
	if err != nil {
		return nil, runtimeError(ctx, err)
	}
	t, err := c.Encode(v)
	if err != nil {
		return nil, encodeError(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, &Error{Kind: KindRuntime, Category: CategoryTimeout, Detail: err.Error(), Cause: err}
	}
	return t, nil
}

// run executes the prefix statements as one chunk against the globals, then
// handles the last statement according to its kind.
func (inv *invocation) run(f *syntax.File, entry *EntryPoint) (starlark.Value, error) {
	n := len(f.Stmts)
	if n == 0 {
		return starlark.None, nil
	}
	switch last := f.Stmts[n-1].(type) {
	case *syntax.ExprStmt:
		if err := inv.exec(f, f.Stmts[:n-1]); err != nil {
			return nil, err
		}
		return starlark.EvalExprOptions(f.Options, inv.thread, last.X, inv.globals)
	case *syntax.DefStmt:
		if err := inv.exec(f, f.Stmts); err != nil {
			return nil, err
		}
		if entry == nil {
			return starlark.None, nil
		}
		return inv.callEntryPoint(inv.globals[last.Name.Name], entry)
	}
	if err := inv.exec(f, f.Stmts); err != nil {
		return nil, err
	}
	return starlark.None, nil
}

func (inv *invocation) exec(f *syntax.File, stmts []syntax.Stmt) error {
	if len(stmts) == 0 {
		return nil
	}
	chunk := &syntax.File{Path: f.Path, Stmts: stmts, Options: f.Options}
	return starlark.ExecREPLChunk(chunk, inv.thread, inv.globals)
}

// bindingTerms flattens the bindings mapping into name => term.
func bindingTerms(bindings term.Term) (map[string]term.Term, error) {
	switch b := bindings.(type) {
	case nil, term.Nil:
		return map[string]term.Term{}, nil
	case *term.Mapping:
		vars := make(map[string]term.Term, b.Len())
		for _, p := range b.Pairs() {
			switch p.Key.(type) {
			case term.Bytes, term.Symbol:
			default:
				return nil, fmt.Errorf("binding name must be text, got %s", p.Key)
			}
			vars[term.KeyText(p.Key)] = p.Value
		}
		return vars, nil
	}
	return nil, fmt.Errorf("bindings must be a map, got %s", bindings)
}

// RunContext returns the context of the run executing on thread.
func RunContext(thread *starlark.Thread) context.Context {
	if ctx, ok := thread.Local(ContextKey).(context.Context); ok {
		return ctx
	}
	return context.Background()
}
