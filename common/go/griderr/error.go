// Package griderr implements the two-level result type used throughout
// gridstore: a small set of recoverable Conditions, and a StoreError sum
// for everything else.
package griderr

import (
	"errors"
	"fmt"
)

// Condition is a recoverable sentinel condition. Unlike StoreError it
// never wraps a cause; callers compare it with errors.Is.
type Condition struct {
	msg string
}

func (c Condition) Error() string { return c.msg }

// Busy is returned when no reader or writer token is available.
var Busy error = Condition{msg: "busy: no token available"}

// Kind identifies a hard failure category. See spec.md §7.
type Kind uint8

const (
	_ Kind = iota
	// MalformedStore means the region contents are inconsistent with the
	// expected layout: missing header, wrong tag, wrong header/region size.
	MalformedStore
	// UnsupportedStore means the region requires a byte swap, or its
	// version falls outside [MIN,MAX].
	UnsupportedStore
	// KeyTooLong means a key exceeds the maximum key length.
	KeyTooLong
	// StoreMissing means a reader tried to open a region that doesn't exist.
	StoreMissing
	// MalformedMessage means the request/reply wire layer received a
	// message with an invalid opcode/field combination.
	MalformedMessage
	// InvalidArgument means a request/reply instruction referred to a key
	// or value kind that doesn't exist or doesn't match.
	InvalidArgument
	// FailedOp means a log append failed because the log is full.
	FailedOp
)

func (k Kind) String() string {
	switch k {
	case MalformedStore:
		return "MalformedStore"
	case UnsupportedStore:
		return "UnsupportedStore"
	case KeyTooLong:
		return "KeyTooLong"
	case StoreMissing:
		return "StoreMissing"
	case MalformedMessage:
		return "MalformedMessage"
	case InvalidArgument:
		return "InvalidArgument"
	case FailedOp:
		return "FailedOp"
	default:
		return "Unknown"
	}
}

// StoreError is the hard-error sum type for the core and its collaborators.
type StoreError struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *StoreError) Unwrap() error { return e.Err }

// New builds a StoreError with no wrapped cause.
func New(kind Kind, msg string) *StoreError {
	return &StoreError{Kind: kind, Msg: msg}
}

// Newf builds a StoreError with a formatted message.
func Newf(kind Kind, format string, args ...any) *StoreError {
	return &StoreError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a StoreError around a causing error.
func Wrap(kind Kind, msg string, err error) *StoreError {
	return &StoreError{Kind: kind, Msg: msg, Err: err}
}

// Is reports whether err is a StoreError of the given kind.
func Is(err error, kind Kind) bool {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind == kind
	}
	return false
}
