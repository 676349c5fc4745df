// Package apperror provides a structured way to handle application errors
// with specific codes, severity levels, and additional details. Codes are
// grouped into kinds (protocol, transport, search) so that connection
// handling can decide how to report a failure without string matching.
package apperror

import (
	"errors"
	"fmt"
)

// ErrorCode represents a specific application error code.
type ErrorCode string

const (
	// Protocol / validation
	CodeInvalidHeader   ErrorCode = "INVALID_HEADER"
	CodeInvalidEdge     ErrorCode = "INVALID_EDGE"
	CodeSelfLoop        ErrorCode = "SELF_LOOP"
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	CodeMalformedFrame  ErrorCode = "MALFORMED_FRAME"

	// Transport
	CodeTransport  ErrorCode = "TRANSPORT"
	CodePeerClosed ErrorCode = "PEER_CLOSED"

	// Search
	CodeNoPath ErrorCode = "NO_PATH"

	// General
	CodeInternal ErrorCode = "INTERNAL_ERROR"
	CodeNilInput ErrorCode = "NIL_INPUT"
)

// Kind groups error codes by who is at fault and how a connection reacts.
type Kind int

const (
	KindUnknown Kind = iota
	// KindProtocol: the peer sent a malformed or out-of-range request.
	KindProtocol
	// KindTransport: reading from or writing to the peer failed.
	KindTransport
	// KindNotFound: a search finished without reaching its target.
	KindNotFound
)

// String returns the label used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindProtocol:
		return "protocol_error"
	case KindTransport:
		return "transport_error"
	case KindNotFound:
		return "not_found"
	default:
		return "internal_error"
	}
}

// KindOf maps an ErrorCode to its Kind.
func KindOf(code ErrorCode) Kind {
	switch code {
	case CodeInvalidHeader, CodeInvalidEdge, CodeSelfLoop, CodeInvalidArgument, CodeMalformedFrame:
		return KindProtocol
	case CodeTransport, CodePeerClosed:
		return KindTransport
	case CodeNoPath:
		return KindNotFound
	default:
		return KindUnknown
	}
}

// Severity defines the criticality level of an error.
type Severity int

const (
	// SeverityWarning indicates a non-critical issue that can be ignored or automatically resolved.
	SeverityWarning Severity = iota
	// SeverityError indicates a standard error that requires attention.
	SeverityError
	// SeverityCritical indicates a severe error that might require immediate human intervention.
	SeverityCritical
)

// String returns the string representation of the Severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Error is a custom error type that includes an ErrorCode, message,
// an optional field, additional details, an underlying cause, and a severity level.
type Error struct {
	Code     ErrorCode      // Code is a unique identifier for the type of error.
	Message  string         // Message is a human-readable description of the error.
	Field    string         // Field indicates which input field caused the error, if applicable.
	Details  map[string]any // Details provides additional structured information about the error.
	Cause    error          // Cause is the underlying error that triggered this application error.
	Severity Severity       // Severity indicates the criticality level of the error.
}

// Error implements the error interface, returning a string representation of the error.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Field != "" {
		msg = fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the wrapped error, allowing for error chain introspection.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Kind returns the kind of the error's code.
func (e *Error) Kind() Kind {
	return KindOf(e.Code)
}

// New creates a new application error with the given code and message.
// The default severity is SeverityError.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Details:  make(map[string]any),
		Severity: SeverityError,
	}
}

// NewWithField creates a new application error with the given code, message, and field.
func NewWithField(code ErrorCode, message, field string) *Error {
	e := New(code, message)
	e.Field = field
	return e
}

// Newf creates a new application error with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a new application error that wraps an existing error,
// providing additional context with a code and message.
func Wrap(cause error, code ErrorCode, message string) *Error {
	e := New(code, message)
	e.Cause = cause
	return e
}

// WithDetails adds a key-value pair to the error's details map and returns the modified error.
func (e *Error) WithDetails(key string, value any) *Error {
	e.Details[key] = value
	return e
}

// WithField sets the field associated with the error and returns the modified error.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// WithSeverity sets the severity level of the error and returns the modified error.
func (e *Error) WithSeverity(s Severity) *Error {
	e.Severity = s
	return e
}

// Is checks if the given error is an application error with a matching ErrorCode.
// It uses errors.As to unwrap the error chain.
func Is(err error, code ErrorCode) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Code extracts the ErrorCode from an error. If the error is not an *Error,
// it returns CodeInternal.
func Code(err error) ErrorCode {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// KindOfError returns the Kind of err, or KindUnknown for foreign errors.
func KindOfError(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}
	return KindUnknown
}

// IsProtocol reports whether err is a decode/validation failure.
func IsProtocol(err error) bool {
	return KindOfError(err) == KindProtocol
}

// IsTransport reports whether err is an I/O failure with the peer.
func IsTransport(err error) bool {
	return KindOfError(err) == KindTransport
}

// IsNotFound reports whether err signals an unreachable target.
func IsNotFound(err error) bool {
	return KindOfError(err) == KindNotFound
}

// IsCritical checks if the given error is an application error with SeverityCritical.
func IsCritical(err error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Severity == SeverityCritical
	}
	return false
}

// Predefined errors for common scenarios. Do not mutate them; wrap instead.
var (
	ErrNoPath   = New(CodeNoPath, "no path from source to target")
	ErrNilGraph = New(CodeNilInput, "graph is nil")
)
