package httpfn

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Failure categories. Every failing request maps to exactly one of these
// before the error envelope is built.
var (
	// ErrConfig indicates the component settings header was missing,
	// duplicated, or unparseable.
	ErrConfig = errors.New("configuration error")

	// ErrDecode indicates a request or response body could not be converted
	// through its codec.
	ErrDecode = errors.New("decode error")

	// ErrDomain indicates the handler failed the request on business grounds,
	// such as a missing required field.
	ErrDomain = errors.New("domain error")

	// ErrTransport indicates the outbound webhook call failed.
	ErrTransport = errors.New("transport error")
)

// Error is a request-scoped failure carrying the HTTP status and the detail
// message surfaced in the error envelope. It is never fatal to the process;
// one failing request never blocks the next.
type Error struct {
	Kind    error  // one of the category sentinels above
	Status  int    // HTTP status for the envelope
	Message string // detail string placed in the envelope body
	Err     error  // underlying cause, may be nil
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error's category sentinel
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

// NewConfigError creates a settings-related failure, reported with status 500.
func NewConfigError(message string, cause error) *Error {
	return &Error{
		Kind:    ErrConfig,
		Status:  http.StatusInternalServerError,
		Message: message,
		Err:     cause,
	}
}

// NewDecodeError creates a codec failure. Malformed bodies are reported with
// status 500, not 400.
func NewDecodeError(message string, cause error) *Error {
	return &Error{
		Kind:    ErrDecode,
		Status:  http.StatusInternalServerError,
		Message: message,
		Err:     cause,
	}
}

// NewDomainError creates a business-rule failure, reported with status 400.
func NewDomainError(message string) *Error {
	return &Error{
		Kind:    ErrDomain,
		Status:  http.StatusBadRequest,
		Message: message,
	}
}

// NewTransportError creates an outbound-call failure, reported with status
// 500. The cause is folded into the message so it is never silently
// swallowed.
func NewTransportError(message string, cause error) *Error {
	if cause != nil {
		message = fmt.Sprintf("%s: %v", message, cause)
	}
	return &Error{
		Kind:    ErrTransport,
		Status:  http.StatusInternalServerError,
		Message: message,
		Err:     cause,
	}
}

// IsConfigError checks if the error is a settings-related failure
func IsConfigError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == ErrConfig
}

// IsDecodeError checks if the error is a codec failure
func IsDecodeError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == ErrDecode
}

// IsDomainError checks if the error is a business-rule failure
func IsDomainError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == ErrDomain
}

// IsTransportError checks if the error is an outbound-call failure
func IsTransportError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == ErrTransport
}

// ErrorEnvelope is the uniform JSON failure body returned to clients.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// envelopeSummary returns the fixed summary string for a status class.
func envelopeSummary(status int) string {
	if status >= 400 && status < 500 {
		return "Invalid request"
	}
	return "Internal server error"
}

// NewErrorEnvelope maps err to its HTTP status and JSON failure body.
// Unclassified errors are reported as 500 with their own message.
func NewErrorEnvelope(err error) (int, ErrorEnvelope) {
	status := http.StatusInternalServerError
	message := ""
	if err != nil {
		message = err.Error()
	}

	var e *Error
	if errors.As(err, &e) {
		status = e.Status
		message = e.Message
	}

	return status, ErrorEnvelope{
		Error:   envelopeSummary(status),
		Message: message,
	}
}

// RenderError builds the complete error response for err: the static page
// when the output codec renders its own errors, the JSON envelope otherwise.
// This is the single termination point for every failing request.
func RenderError(err error, renderer ErrorRenderer) *Response {
	if renderer != nil {
		if resp := renderer.RenderError(err); resp != nil {
			return resp
		}
	}

	status, envelope := NewErrorEnvelope(err)
	body, merr := json.Marshal(envelope)
	if merr != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"Internal server error","message":"Failed to encode error response"}`)
	}

	return &Response{
		StatusCode: status,
		Headers:    defaultHeaders("application/json"),
		Body:       body,
	}
}
