// Package cfgerr defines the error taxonomy shared by every config pass and by
// command resolution. Each error carries the dotted breadcrumb of the config
// path that was being processed when it occurred.
package cfgerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind int

const (
	// Syntax covers ambiguous shorthand queries, non-string keys and
	// malformed task-collection shapes.
	Syntax Kind = iota + 1
	// Reference covers unknown keys under strict mode, reserved keys reaching
	// a fallback branch and paths that are not directories.
	Reference
	// Resolution covers missing scope path segments and missing leaf commands.
	Resolution
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case Syntax:
		return "syntax"
	case Reference:
		return "reference"
	case Resolution:
		return "resolution"
	default:
		return "unknown"
	}
}

// Error is the error type returned by the config pipeline and the resolver.
type Error struct {
	Kind  Kind
	Path  string // dotted breadcrumb, may be empty
	Msg   string
	Cause error
}

// Error renders "<path> - <message>", plus the cause when one is attached.
func (e *Error) Error() string {
	msg := e.Msg
	if e.Path != "" {
		msg = e.Path + " - " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an error of the given kind.
func New(kind Kind, path, msg string) error {
	return &Error{Kind: kind, Path: path, Msg: msg}
}

// Wrap creates an error of the given kind around an underlying cause.
func Wrap(kind Kind, path, msg string, cause error) error {
	return &Error{Kind: kind, Path: path, Msg: msg, Cause: cause}
}

// Syntaxf creates a Syntax error with a formatted message.
func Syntaxf(path, format string, args ...any) error {
	return &Error{Kind: Syntax, Path: path, Msg: fmt.Sprintf(format, args...)}
}

// Referencef creates a Reference error with a formatted message.
func Referencef(path, format string, args ...any) error {
	return &Error{Kind: Reference, Path: path, Msg: fmt.Sprintf(format, args...)}
}

// Resolutionf creates a Resolution error with a formatted message.
func Resolutionf(path, format string, args ...any) error {
	return &Error{Kind: Resolution, Path: path, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind from err, or 0 if err is not (and does not wrap) an *Error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

// As returns (*Error, true) if err is or wraps an *Error.
func As(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// Join appends a segment to a dotted breadcrumb.
func Join(path, segment string) string {
	if path == "" {
		return segment
	}
	return path + "." + segment
}

// WithPath sets the breadcrumb of err when err is an *Error that does not
// carry one yet. Other errors are returned unchanged.
func WithPath(err error, path string) error {
	var ce *Error
	if errors.As(err, &ce) && ce.Path == "" {
		cp := *ce
		cp.Path = path
		return &cp
	}
	return err
}
