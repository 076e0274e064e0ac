/*
Package dynwire – error types.

ArgError covers synchronous caller mistakes (schema violations, malformed
batch records); ServiceError covers everything surfaced by the wire exchange.
*/
package dynwire

import "fmt"

// ErrorCode is a well-known error category string.
type ErrorCode string

const (
	ErrValidation ErrorCode = "ValidationError"
	ErrThrottled  ErrorCode = "ThrottlingError"
	ErrTransient  ErrorCode = "TransientError"
	ErrRejected   ErrorCode = "RejectedError"
	ErrTransport  ErrorCode = "TransportError"
	ErrDecode     ErrorCode = "AttributeTypeError"
)

// ArgError reports an invalid argument or request shape. It is always
// returned synchronously, before any network exchange.
type ArgError struct {
	Message string
	Code    ErrorCode
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// NewArgError constructs an ArgError, defaulting to ErrValidation.
func NewArgError(msg string, code ...ErrorCode) *ArgError {
	c := ErrValidation
	if len(code) > 0 {
		c = code[0]
	}
	return &ArgError{Message: msg, Code: c}
}

func argErrorf(format string, args ...any) *ArgError {
	return NewArgError(fmt.Sprintf(format, args...))
}

// ServiceError is the failed outcome of a wire exchange. Type holds the short
// service error name (the "__type" field with its namespace prefix stripped),
// or the raw HTTP status line when no structured body was available.
type ServiceError struct {
	Type       string
	Message    string
	StatusCode int
	Code       ErrorCode
	Body       string // raw response body, for diagnostics
	Cause      error
}

func (e *ServiceError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Type, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

// Retryable reports whether the retry orchestrator may resubmit the request.
func (e *ServiceError) Retryable() bool {
	return e.Code == ErrThrottled || e.Code == ErrTransient
}

// NewServiceError constructs a ServiceError.
func NewServiceError(code ErrorCode, msg string, opts ...func(*ServiceError)) *ServiceError {
	err := &ServiceError{Code: code, Message: msg}
	for _, o := range opts {
		o(err)
	}
	return err
}

// WithType sets the short service error name.
func WithType(t string) func(*ServiceError) {
	return func(e *ServiceError) { e.Type = t }
}

// WithStatus sets the HTTP status code.
func WithStatus(status int) func(*ServiceError) {
	return func(e *ServiceError) { e.StatusCode = status }
}

// WithBody attaches the raw response body.
func WithBody(body string) func(*ServiceError) {
	return func(e *ServiceError) { e.Body = body }
}

// WithCause wraps an underlying error.
func WithCause(cause error) func(*ServiceError) {
	return func(e *ServiceError) { e.Cause = cause }
}
