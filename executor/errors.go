package executor

import (
	"context"
	"errors"
	"strings"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/caffeineduck/termite/term"
)

// Kind classifies a failed run.
type Kind string

const (
	KindParse        Kind = "parse"         // malformed snippet
	KindRuntime      Kind = "runtime"       // failure while executing
	KindUnsafeSymbol Kind = "unsafe_symbol" // rejected symbol under the strict policy
	KindEncoding     Kind = "encoding"      // value without a term form
)

// Sentinels for errors.Is.
var (
	ErrParse        = &Error{Kind: KindParse}
	ErrRuntime      = &Error{Kind: KindRuntime}
	ErrUnsafeSymbol = &Error{Kind: KindUnsafeSymbol}
	ErrEncoding     = &Error{Kind: KindEncoding}
)

// Error is returned for every failed run. Category names the guest failure
// class (ZeroDivisionError, NameError, ...) and Detail its message.
type Error struct {
	Cause    error
	Kind     Kind
	Category string
	Detail   string
}

func (e *Error) Error() string {
	if e.Category == "" {
		return string(e.Kind) + ": " + e.Detail
	}
	return e.Category + ": " + e.Detail
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Term returns the in-band form {error, "<Category>: <Detail>"}.
func (e *Error) Term() term.ErrorPair {
	return term.NewErrorPair(e.Error())
}

// Failure categories.
const (
	CategorySyntax       = "SyntaxError"
	CategoryName         = "NameError"
	CategoryZeroDivision = "ZeroDivisionError"
	CategoryKey          = "KeyError"
	CategoryIndex        = "IndexError"
	CategoryAttribute    = "AttributeError"
	CategoryType         = "TypeError"
	CategoryTimeout      = "TimeoutError"
	CategoryEval         = "EvalError"
	CategoryUnsafeSymbol = "UnsafeSymbolError"
	CategoryEncoding     = "EncodingError"
)

func parseError(err error) *Error {
	detail := err.Error()
	var se syntax.Error
	if errors.As(err, &se) {
		detail = se.Msg
	}
	return &Error{Kind: KindParse, Category: CategorySyntax, Detail: detail, Cause: err}
}

// resolveError classifies a failed name resolution. Undefined names are a
// runtime failure, like in a dynamically scoped language; anything else is
// a malformed snippet.
func resolveError(err error) *Error {
	var list resolve.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		msg := list[0].Msg
		if strings.HasPrefix(msg, "undefined:") {
			return &Error{Kind: KindRuntime, Category: CategoryName, Detail: "name '" + strings.TrimSpace(strings.TrimPrefix(msg, "undefined:")) + "' is not defined", Cause: err}
		}
		return &Error{Kind: KindParse, Category: CategorySyntax, Detail: msg, Cause: err}
	}
	return parseError(err)
}

// runtimeError classifies an error raised while executing guest code.
func runtimeError(ctx context.Context, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, term.ErrUnsafeSymbol) {
		return symbolError(err)
	}
	var list resolve.ErrorList
	if errors.As(err, &list) {
		return resolveError(err)
	}
	var se syntax.Error
	if errors.As(err, &se) {
		return parseError(err)
	}

	msg := err.Error()
	var ee *starlark.EvalError
	if errors.As(err, &ee) {
		msg = ee.Msg
	}
	if ctx.Err() != nil && strings.Contains(msg, "cancelled") {
		return &Error{Kind: KindRuntime, Category: CategoryTimeout, Detail: ctx.Err().Error(), Cause: err}
	}
	return &Error{Kind: KindRuntime, Category: category(msg), Detail: msg, Cause: err}
}

func category(msg string) string {
	switch {
	case strings.Contains(msg, "by zero"):
		return CategoryZeroDivision
	case strings.Contains(msg, "referenced before assignment"), strings.Contains(msg, "not defined"):
		return CategoryName
	case strings.Contains(msg, "not in dict"), strings.HasPrefix(msg, "key "):
		return CategoryKey
	case strings.Contains(msg, "out of range"):
		return CategoryIndex
	case strings.Contains(msg, "field or method"), strings.Contains(msg, "has no method"), strings.Contains(msg, "has no ."):
		return CategoryAttribute
	case strings.Contains(msg, "too many steps"):
		return CategoryTimeout
	case strings.Contains(msg, "unknown binary op"),
		strings.Contains(msg, "unsupported"),
		strings.Contains(msg, "not callable"),
		strings.Contains(msg, "invalid call of non-function"),
		strings.Contains(msg, "unhashable"),
		strings.Contains(msg, ", want "),
		strings.Contains(msg, "missing argument"),
		strings.Contains(msg, "unexpected keyword argument"):
		return CategoryType
	}
	return CategoryEval
}

func symbolError(err error) *Error {
	detail := err.Error()
	var unsafe *term.UnsafeSymbolError
	if errors.As(err, &unsafe) {
		detail = unsafe.Error()
	}
	return &Error{Kind: KindUnsafeSymbol, Category: CategoryUnsafeSymbol, Detail: detail, Cause: err}
}

// encodeError classifies a failure to encode the result.
func encodeError(err error) *Error {
	if errors.Is(err, term.ErrUnsafeSymbol) {
		return symbolError(err)
	}
	return &Error{Kind: KindEncoding, Category: CategoryEncoding, Detail: err.Error(), Cause: err}
}
