package codec

import (
	"errors"
	"fmt"
)

// ErrEncoding is matched by every *EncodingError.
var ErrEncoding = errors.New("encoding failed")

// EncodingError reports a value with no term representation, or a term
// with no Starlark representation.
type EncodingError struct {
	Type   string
	Reason string
}

func (e *EncodingError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot encode value of type %s: %s", e.Type, e.Reason)
	}
	return fmt.Sprintf("cannot encode value of type %s", e.Type)
}

func (e *EncodingError) Is(target error) bool { return target == ErrEncoding }
