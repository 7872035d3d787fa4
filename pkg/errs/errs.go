// Package errs defines the error taxonomy shared across the service so
// handlers can map failures to HTTP statuses without string matching.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping and logging.
type Kind string

const (
	KindConfig            Kind = "config"
	KindUnavailable       Kind = "unavailable"
	KindMalformed         Kind = "malformed"
	KindNotFound          Kind = "not_found"
	KindPartialCompaction Kind = "partial_compaction"
	KindInternal          Kind = "internal"
)

// Error carries a kind plus an optional wrapped cause. Relocated is set on
// partial-compaction errors to report how many messages moved before the
// failure.
type Error struct {
	Kind      Kind
	Msg       string
	Err       error
	Relocated int
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a classified error.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Config reports invalid configuration detected at startup.
func Config(msg string) *Error { return New(KindConfig, msg) }

// Unavailable reports a dependency that could not be reached.
func Unavailable(msg string, err error) *Error { return Wrap(KindUnavailable, msg, err) }

// Malformed reports rejected caller input.
func Malformed(msg string) *Error { return New(KindMalformed, msg) }

// NotFound reports a missing record.
func NotFound(msg string) *Error { return New(KindNotFound, msg) }

// PartialCompaction reports a compaction run that failed mid-way after
// relocating some messages. The run is safe to retry.
func PartialCompaction(relocated int, err error) *Error {
	return &Error{
		Kind: KindPartialCompaction, Msg: "compaction interrupted",
		Err: err, Relocated: relocated,
	}
}

// KindOf extracts the classification of err, or KindInternal when err is not
// classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// RelocatedCount returns the partial-compaction progress carried by err.
func RelocatedCount(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Relocated
	}
	return 0
}

// HTTPStatus maps a classified error onto a response status.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindMalformed:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable, KindConfig:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
