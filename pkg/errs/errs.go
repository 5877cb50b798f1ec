// Package errs defines the shared error-kind vocabulary used by both
// gitus (pkg/repo) and buildus (pkg/build), generalizing the single
// wrap-and-unwrap error shape the teacher repo used for one specific
// case (RefUpdateReflogError) into one reusable type for every kind.
package errs

import "fmt"

// Kind is one of the error kinds enumerated by the spec: each
// operation surfaces exactly one.
type Kind string

const (
	NotInitialized     Kind = "not-initialized"
	AlreadyInitialized Kind = "already-initialized"
	BadArgs            Kind = "bad-args"
	MissingPath        Kind = "missing-path"
	DuplicateStage     Kind = "duplicate-stage"
	EmptyIndex         Kind = "empty-index"
	BadDigestFormat    Kind = "bad-digest-format"
	UnknownObject      Kind = "unknown-object"
	IOError            Kind = "io-error"
	ParseError         Kind = "parse-error"
	CompileFailed      Kind = "compile-failed"
	LinkFailed         Kind = "link-failed"
)

// E is a single error kind paired with a human-readable message and an
// optional wrapped cause.
type E struct {
	Kind    Kind
	Message string
	Cause   error
}

// New builds an E with no wrapped cause.
func New(kind Kind, message string) *E {
	return &E{Kind: kind, Message: message}
}

// Wrap builds an E that carries cause as its Unwrap target.
func Wrap(kind Kind, message string, cause error) *E {
	return &E{Kind: kind, Message: message, Cause: cause}
}

func (e *E) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *E) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, Sentinel(kind)) match any *E of the same
// Kind; the target's message and cause are ignored.
func (e *E) Is(target error) bool {
	k, ok := target.(*E)
	if !ok {
		return false
	}
	return k.Kind == e.Kind
}

// Sentinel returns a comparison target for errors.Is(err, Sentinel(kind)).
func Sentinel(kind Kind) error {
	return &E{Kind: kind}
}

// KindOf extracts the Kind of err if it (or something it wraps) is an
// *E, returning ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *E
	for err != nil {
		if asE, ok := err.(*E); ok {
			e = asE
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if e == nil {
		return "", false
	}
	return e.Kind, true
}
