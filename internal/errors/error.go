package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/vango-dev/retree/pkg/recon"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime Category = "runtime"
	CategoryConfig  Category = "config"
	CategoryCLI     Category = "cli"
)

// Diagnostic is a structured error with a code, explanation and hint.
type Diagnostic struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example is code showing the correct approach.
	Example string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *Diagnostic) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *Diagnostic) Unwrap() error {
	return e.Wrapped
}

// WithSuggestion adds a fix suggestion to the error.
func (e *Diagnostic) WithSuggestion(s string) *Diagnostic {
	e.Suggestion = s
	return e
}

// WithExample adds a code example to the error.
func (e *Diagnostic) WithExample(ex string) *Diagnostic {
	e.Example = ex
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *Diagnostic) WithDetail(d string) *Diagnostic {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *Diagnostic) Wrap(err error) *Diagnostic {
	e.Wrapped = err
	return e
}

// New creates a Diagnostic from a registered error code.
func New(code string) *Diagnostic {
	template, ok := registry[code]
	if !ok {
		return &Diagnostic{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &Diagnostic{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new Diagnostic with a formatted message (no code).
func Newf(category Category, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// reconCodes maps recon sentinels to registered codes.
var reconCodes = []struct {
	err  error
	code string
}{
	{recon.ErrNotDeclaring, "E001"},
	{recon.ErrAlreadyDeclaring, "E002"},
	{recon.ErrUnbalanced, "E003"},
	{recon.ErrNotDeclared, "E004"},
	{recon.ErrAlreadyPlaced, "E005"},
	{recon.ErrAlreadyNested, "E006"},
}

// FromError wraps err in a Diagnostic. Recon misuse errors get their
// registered code; anything else gets fallback.
func FromError(err error, fallback string) *Diagnostic {
	if err == nil {
		return nil
	}
	var d *Diagnostic
	if stderrors.As(err, &d) {
		return d
	}
	for _, rc := range reconCodes {
		if stderrors.Is(err, rc.err) {
			diag := New(rc.code).Wrap(err)
			var me *recon.MisuseError
			if stderrors.As(err, &me) && me.Label != "" {
				diag.Detail = fmt.Sprintf("%s (node %q, id %s)", diag.Detail, me.Label, me.ID)
			}
			return diag
		}
	}
	return New(fallback).Wrap(err)
}
