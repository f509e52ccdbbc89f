// Package errs defines the typed error kinds returned to dispatcher
// callers (§7 of the engine spec) and the plumbing to classify and wrap
// them without losing the underlying cause.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error categories the dispatcher can return.
type Kind string

const (
	InvalidKeyFormat   Kind = "InvalidKeyFormat"
	UnknownEntry       Kind = "UnknownEntry"
	DuplicateEntry     Kind = "DuplicateEntry"
	KindMismatch       Kind = "KindMismatch"
	InvalidId          Kind = "InvalidId"
	InvalidProbability Kind = "InvalidProbability"
	InvalidSparsePair  Kind = "InvalidSparsePair"
	BasisMismatch      Kind = "BasisMismatch"
	DumpMissing        Kind = "DumpMissing"
	KernelError        Kind = "KernelError"
	Rejected           Kind = "Rejected"
	Internal           Kind = "Internal"
)

// Error is the concrete error type returned through every dispatcher
// callback. Key is the offending key where one exists (may be empty).
type Error struct {
	Kind Kind
	Key  string
	Err  error
}

func (e *Error) Error() string {
	if e.Key == "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Kind, e.Err)
		}
		return string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %q: %v", e.Kind, e.Key, e.Err)
	}
	return fmt.Sprintf("%s %q", e.Kind, e.Key)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error for kind k on key, optionally wrapping cause.
func New(k Kind, key string, cause error) *Error {
	return &Error{Kind: k, Key: key, Err: cause}
}

// Is reports whether err is an *Error of kind k, looking through wraps.
func Is(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

// KindOf extracts the Kind of err, or Internal if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}
