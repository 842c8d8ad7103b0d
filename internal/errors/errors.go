// Package errors defines the typed error taxonomy shared across cide's
// pipeline stages: config loading, file IO, per-file parsing, dependency
// resolution, context retrieval, and the lexical search index.
package errors

import (
	"fmt"
	"time"
)

// Kind classifies an error so callers can decide whether to retry, log and
// continue, or propagate.
type Kind string

const (
	KindConfig               Kind = "config"
	KindIO                   Kind = "io"
	KindParse                Kind = "parse"
	KindDependencyResolution Kind = "dependency_resolution"
	KindContextNotFound      Kind = "context_not_found"
	KindIndexNotReady        Kind = "index_not_ready"
	KindIndexWrite           Kind = "index_write"
)

// Error is the single error type used across the module. Operation and
// Path identify where the failure occurred; Underlying carries the cause.
type Error struct {
	Kind       Kind
	Operation  string
	Path       string
	Underlying error
	Timestamp  time.Time
	Retryable  bool
}

// New creates an Error of the given kind wrapping err.
func New(kind Kind, operation string, err error) *Error {
	return &Error{
		Kind:       kind,
		Operation:  operation,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithPath attaches the file or config path the error concerns.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithRetryable marks whether the caller may retry the operation once.
func (e *Error) WithRetryable(retryable bool) *Error {
	e.Retryable = retryable
	return e
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s failed for %s: %v", e.Kind, e.Operation, e.Path, e.Underlying)
	}
	return fmt.Sprintf("%s: %s failed: %v", e.Kind, e.Operation, e.Underlying)
}

// Unwrap enables errors.Is/errors.As against Underlying.
func (e *Error) Unwrap() error {
	return e.Underlying
}

// IsRetryable reports whether the operation may be retried once, per the
// IoError retry policy in the error handling design.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// Config, IO, Parse, DependencyResolution, ContextNotFound, IndexNotReady
// and IndexWrite are convenience constructors for the fixed error kinds.

func Config(operation string, err error) *Error {
	return New(KindConfig, operation, err)
}

func IO(operation string, err error) *Error {
	return New(KindIO, operation, err).WithRetryable(true)
}

func Parse(operation string, err error) *Error {
	return New(KindParse, operation, err)
}

func DependencyResolution(operation string, err error) *Error {
	return New(KindDependencyResolution, operation, err)
}

func ContextNotFound(operation string, err error) *Error {
	return New(KindContextNotFound, operation, err)
}

func IndexNotReady(operation string) *Error {
	return New(KindIndexNotReady, operation, fmt.Errorf("search index has not completed a build"))
}

func IndexWrite(operation string, err error) *Error {
	return New(KindIndexWrite, operation, err)
}
