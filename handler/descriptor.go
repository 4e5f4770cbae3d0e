package handler

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mitchellh/mapstructure"

	"github.com/caffeineduck/termite/term"
)

var (
	// ErrNotHandler is returned when a term is not a handler view.
	ErrNotHandler = errors.New("not a handler view")
	// ErrInvalidInput is returned when an input does not match the input
	// schema of a handler.
	ErrInvalidInput = errors.New("invalid handler input")
)

// Descriptor is the host side of a handler view.
type Descriptor struct {
	ID           string         `mapstructure:"id" json:"id"`
	Name         string         `mapstructure:"name" json:"name"`
	Description  string         `mapstructure:"description" json:"description"`
	InputSchema  map[string]any `mapstructure:"input_schema" json:"input_schema"`
	OutputSchema map[string]any `mapstructure:"output_schema" json:"output_schema"`
	Examples     string         `mapstructure:"examples" json:"examples,omitempty"`
	Locator      []string       `mapstructure:"handler" json:"-"`

	input *openapi3.Schema
}

// Language returns the locator language, e.g. "starlark".
func (d *Descriptor) Language() string {
	if len(d.Locator) > 0 {
		return d.Locator[0]
	}
	return ""
}

// Path returns the locator path of the script defining the handler.
func (d *Descriptor) Path() string {
	if len(d.Locator) > 1 {
		return d.Locator[1]
	}
	return ""
}

// Decode reads a handler view. The view must be a struct of module
// Elixir.Termite.Handler.
func Decode(t term.Term) (*Descriptor, error) {
	m, ok := t.(*term.Mapping)
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrNotHandler, t)
	}
	module, ok := m.Get(term.StructKey())
	if !ok || module != term.StructModule(Class) {
		return nil, fmt.Errorf("%w: struct %v", ErrNotHandler, module)
	}

	var d Descriptor
	if err := mapstructure.Decode(term.ToNative(m), &d); err != nil {
		return nil, fmt.Errorf("decode handler: %w", err)
	}
	if d.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrNotHandler)
	}
	schema, err := compileSchema(d.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("handler %s: input_schema: %w", d.Name, err)
	}
	d.input = schema
	return &d, nil
}

func compileSchema(raw map[string]any) (*openapi3.Schema, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	schema := openapi3.NewSchema()
	if err := schema.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return schema, nil
}

// ValidateInput checks input against the input schema. An empty schema
// accepts everything.
func (d *Descriptor) ValidateInput(input term.Term) error {
	if d.input == nil {
		return nil
	}
	if err := d.input.VisitJSON(term.ToNative(input), openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
