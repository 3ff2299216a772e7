package utils

import (
	"errors"
	"fmt"
)

// ErrorKind tags an error with how callers should react to it, so branching
// happens on data rather than on type hierarchies.
type ErrorKind string

const (
	// KindTransient marks upstream failures that were already retried and
	// may succeed later (5xx, 429, timeouts).
	KindTransient ErrorKind = "transient"
	// KindInvalid marks requests that will never succeed as issued (4xx
	// other than 429, unknown series codes).
	KindInvalid ErrorKind = "invalid"
	// KindStorage marks database failures outside the expected upsert
	// conflict path.
	KindStorage ErrorKind = "storage"
	// KindCache marks cache backend failures. These are always recovered
	// locally and should never reach a caller.
	KindCache ErrorKind = "cache"
)

// Error is the typed error surfaced by the pipeline. Series and Phase make
// failures diagnosable without blind retry loops.
type Error struct {
	Kind    ErrorKind
	Series  string
	Phase   string // fetch, parse, store
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Series != "" {
		return fmt.Sprintf("%s [%s/%s]: %s", e.Kind, e.Series, e.Phase, msg)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Kind, e.Phase, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a tagged pipeline error.
func NewError(kind ErrorKind, series, phase, message string, err error) *Error {
	return &Error{Kind: kind, Series: series, Phase: phase, Message: message, Err: err}
}

// KindOf extracts the kind of a pipeline error, or "" for foreign errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsTransient reports whether err is a retried-and-exhausted upstream error.
func IsTransient(err error) bool {
	return KindOf(err) == KindTransient
}

// IsInvalid reports whether err is a non-retryable client error.
func IsInvalid(err error) bool {
	return KindOf(err) == KindInvalid
}

// IsStorage reports whether err came from the persistence layer.
func IsStorage(err error) bool {
	return KindOf(err) == KindStorage
}
