// Package apperr defines the normalized error shape shared by every tool
// handler. All failures crossing back through a transport carry a stable
// kind tag plus a human-readable detail string; raw transport or library
// errors are never serialized to a caller.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind is the stable classification tag carried on every normalized error.
type Kind string

const (
	// KindValidation marks bad or missing arguments. Validation failures
	// never reach the network.
	KindValidation Kind = "validation"
	// KindAuth marks a missing or rejected credential.
	KindAuth Kind = "auth"
	// KindNotFound maps a remote 404.
	KindNotFound Kind = "not_found"
	// KindConflict maps a remote 409 or a local destination that already
	// contains data.
	KindConflict Kind = "conflict"
	// KindRateLimit maps a remote 429. Nothing is retried automatically;
	// retry policy belongs to the caller.
	KindRateLimit Kind = "rate_limited"
	// KindTransport marks a network failure or timeout.
	KindTransport Kind = "transport"
	// KindUnknownOperation marks dispatch of an unregistered tool name.
	KindUnknownOperation Kind = "unknown_operation"
	// KindLocalExec marks a missing or failing local git binary.
	KindLocalExec Kind = "local_exec"
)

// Error is the one error type handlers return. It satisfies the error
// interface so it can travel through ordinary Go error plumbing.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds a normalized error with a formatted detail message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// From extracts the normalized error from err, wrapping anything
// unrecognized as a transport failure so callers always see a stable shape.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Kind: KindTransport, Message: err.Error()}
}

// envelope is the wire shape for failures: {"error":{"kind","message"}}.
type envelope struct {
	Error *Error `json:"error"`
}

// Envelope renders the transport-agnostic failure payload for err.
func Envelope(err error) string {
	data, marshalErr := json.Marshal(envelope{Error: From(err)})
	if marshalErr != nil {
		// Error and envelope contain only strings; this cannot happen.
		return `{"error":{"kind":"transport","message":"failed to encode error"}}`
	}
	return string(data)
}
