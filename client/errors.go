// Package client executes compiled queries over EdgeQL-for-HTTP.
package client

import "fmt"

// Codes for errors raised by the client itself. Errors reported by the
// server keep the type name from its error envelope, so codes like
// CardinalityViolationError pass through without reinterpretation.
const (
	// CodeInvalidArgument marks client-side rejection of query arguments.
	CodeInvalidArgument = "InvalidArgument"
	// CodeRemoteExecution marks transport failures with no server reply.
	CodeRemoteExecution = "RemoteExecutionError"
	// CodeAuthentication marks a failed token acquisition or handshake.
	CodeAuthentication = "AuthenticationError"
	// CodeProtocol marks replies the client cannot interpret.
	CodeProtocol = "ProtocolError"
	// CodeNoData marks a required single result that did not arrive.
	CodeNoData = "NoDataError"
	// CodeCardinalityMismatch marks a single-object decode of a
	// multi-row result.
	CodeCardinalityMismatch = "ResultCardinalityMismatchError"
)

// Error implements the error interface with an EdgeDB-style error code.
type Error struct {
	code    string
	message string
	cause   error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

// Code returns the error code.
func (e *Error) Code() string { return e.code }

// Message returns the error message without the code or cause.
func (e *Error) Message() string { return e.message }

// Unwrap returns the underlying cause for errors.As/errors.Is support.
func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error carrying the same code, so
// errors.Is(err, client.NewError(client.CodeNoData, "")) branches on codes.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.code == e.code
}

// NewError creates a new error with the given code and message.
func NewError(code, message string) *Error {
	return &Error{code: code, message: message}
}

// Newf creates a new error with the given code and formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an underlying error with a coded error.
func Wrap(code, message string, cause error) *Error {
	return &Error{code: code, message: message, cause: cause}
}

// InvalidArgument creates an argument validation error.
func InvalidArgument(message string) *Error {
	return &Error{code: CodeInvalidArgument, message: message}
}

// InvalidArgumentf creates an argument validation error with a formatted message.
func InvalidArgumentf(format string, args ...any) *Error {
	return &Error{code: CodeInvalidArgument, message: fmt.Sprintf(format, args...)}
}

// Authentication creates an authentication error.
func Authentication(message string) *Error {
	return &Error{code: CodeAuthentication, message: message}
}

// Authenticationf creates an authentication error with a formatted message.
func Authenticationf(format string, args ...any) *Error {
	return &Error{code: CodeAuthentication, message: fmt.Sprintf(format, args...)}
}

// RemoteExecution wraps a transport failure.
func RemoteExecution(message string, cause error) *Error {
	return &Error{code: CodeRemoteExecution, message: message, cause: cause}
}

// Protocolf creates a protocol error with a formatted message.
func Protocolf(format string, args ...any) *Error {
	return &Error{code: CodeProtocol, message: fmt.Sprintf(format, args...)}
}

// NoData creates a missing-result error.
func NoData(message string) *Error {
	return &Error{code: CodeNoData, message: message}
}
