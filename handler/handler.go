package handler

import (
	"fmt"

	"github.com/google/uuid"
	"go.starlark.net/starlark"

	"github.com/caffeineduck/termite/codec"
	"github.com/caffeineduck/termite/term"
)

// Class is the __class__ of a handler view. It converts to the struct
// module Elixir.Termite.Handler.
const Class = "termite.handler"

// Handler is the guest value returned by handler(...).
type Handler struct {
	id           string
	name         string
	description  string
	inputSchema  starlark.Value
	outputSchema starlark.Value
	handle       starlark.Value
	examples     string
	path         string
}

var (
	_ starlark.HasAttrs = (*Handler)(nil)
	_ codec.Marshaler   = (*Handler)(nil)
)

// Builtin is the guest constructor:
//
//	handler(name, description="", id=None, input_schema={}, output_schema={},
//	        handle=None, examples="")
//
// A missing id is replaced by a random UUID. The handler remembers the file
// it was created in as its locator path.
var Builtin = starlark.NewBuiltin("handler", newHandler)

func newHandler(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		name, description, examples string
		id                          starlark.Value = starlark.None
		inputSchema                 starlark.Value = starlark.None
		outputSchema                starlark.Value = starlark.None
		handle                      starlark.Value = starlark.None
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs,
		"name", &name,
		"description?", &description,
		"id?", &id,
		"input_schema?", &inputSchema,
		"output_schema?", &outputSchema,
		"handle?", &handle,
		"examples?", &examples,
	); err != nil {
		return nil, err
	}

	h := &Handler{
		name:        name,
		description: description,
		examples:    examples,
		path:        thread.Name,
	}
	switch id := id.(type) {
	case starlark.NoneType:
		h.id = uuid.NewString()
	case starlark.String:
		h.id = string(id)
	default:
		return nil, fmt.Errorf("%s: id must be a string, got %s", b.Name(), id.Type())
	}

	var err error
	if h.inputSchema, err = schemaArg(b.Name(), "input_schema", inputSchema); err != nil {
		return nil, err
	}
	if h.outputSchema, err = schemaArg(b.Name(), "output_schema", outputSchema); err != nil {
		return nil, err
	}
	if handle != starlark.None {
		if _, ok := handle.(starlark.Callable); !ok {
			return nil, fmt.Errorf("%s: handle must be callable, got %s", b.Name(), handle.Type())
		}
	}
	h.handle = handle
	return h, nil
}

func schemaArg(fn, param string, v starlark.Value) (starlark.Value, error) {
	switch v.(type) {
	case starlark.NoneType:
		return starlark.NewDict(0), nil
	case *starlark.Dict:
		return v, nil
	}
	return nil, fmt.Errorf("%s: %s must be a dict, got %s", fn, param, v.Type())
}

func (h *Handler) String() string        { return fmt.Sprintf("<handler %s>", h.name) }
func (h *Handler) Type() string          { return "handler" }
func (h *Handler) Truth() starlark.Bool  { return starlark.True }
func (h *Handler) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: handler") }

func (h *Handler) Freeze() {
	h.inputSchema.Freeze()
	h.outputSchema.Freeze()
	h.handle.Freeze()
}

var handlerAttrs = []string{"description", "examples", "handle", "id", "input_schema", "name", "output_schema", "view"}

func (h *Handler) AttrNames() []string { return handlerAttrs }

func (h *Handler) Attr(name string) (starlark.Value, error) {
	switch name {
	case "id":
		return starlark.String(h.id), nil
	case "name":
		return starlark.String(h.name), nil
	case "description":
		return starlark.String(h.description), nil
	case "examples":
		return starlark.String(h.examples), nil
	case "input_schema":
		return h.inputSchema, nil
	case "output_schema":
		return h.outputSchema, nil
	case "handle":
		if h.handle == starlark.None {
			return nil, nil
		}
		return h.handle, nil
	case "view":
		return starlark.NewBuiltin("view", h.viewBuiltin).BindReceiver(h), nil
	}
	return nil, nil
}

func (h *Handler) viewBuiltin(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	return h.View(), nil
}

// View returns the struct-shaped dict describing h to the host.
func (h *Handler) View() *starlark.Dict {
	d := starlark.NewDict(8)
	set := func(k string, v starlark.Value) { _ = d.SetKey(starlark.String(k), v) }
	set("__class__", starlark.String(Class))
	set("id", starlark.String(h.id))
	set("name", starlark.String(h.name))
	set("description", starlark.String(h.description))
	set("input_schema", h.inputSchema)
	set("output_schema", h.outputSchema)
	set("examples", starlark.String(h.examples))
	set("handler", starlark.Tuple{codec.NewAtom(term.MustIntern("starlark")), starlark.String(h.path)})
	return d
}

// MarshalTerm encodes h as its view.
func (h *Handler) MarshalTerm(c *codec.Codec) (term.Term, error) {
	return c.Encode(h.View())
}

