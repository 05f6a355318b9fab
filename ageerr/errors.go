// Package ageerr defines the closed taxonomy of error kinds surfaced by this
// client, with a preserved cause chain.
package ageerr

import (
	"errors"
	"fmt"
)

// Kind tags an Error with the category of failure it represents.
type Kind string

const (
	ConnectionError        Kind = "CONNECTION_ERROR"
	PoolTimeout            Kind = "POOL_TIMEOUT"
	QueryError             Kind = "QUERY_ERROR"
	CypherSyntaxError      Kind = "CYPHER_SYNTAX_ERROR"
	TransactionError       Kind = "TRANSACTION_ERROR"
	SchemaValidationError  Kind = "SCHEMA_VALIDATION_ERROR"
	BatchLoaderError       Kind = "BATCH_LOADER_ERROR"
	UnknownError           Kind = "UNKNOWN_ERROR"
)

// Phase identifies which stage of a batch load a BatchLoaderError occurred in.
type Phase string

const (
	PhaseValidation  Phase = "validation"
	PhaseTransaction Phase = "transaction"
	PhaseVertices    Phase = "vertices"
	PhaseEdges       Phase = "edges"
	PhaseCleanup     Phase = "cleanup"
)

// Error is the concrete error type returned by this package's public API.
type Error struct {
	Kind    Kind
	Phase   Phase
	Subtype string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error that preserves cause as its Unwrap target.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// ForBatchLoader builds the BATCH_LOADER_ERROR{phase, subtype} shape required
// by spec.md §7.
func ForBatchLoader(phase Phase, subtype, message string, cause error) *Error {
	return &Error{Kind: BatchLoaderError, Phase: phase, Subtype: subtype, Message: message, Cause: cause}
}

// Is makes errors.Is(err, ageerr.New(ageerr.ConnectionError, "")) match any
// *Error of the same Kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// KindOf unwraps err looking for an *Error and returns its Kind, or
// UnknownError if err does not carry one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return UnknownError
}
