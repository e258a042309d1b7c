package edgeql

import "fmt"

// ErrorCode classifies construction-time failures.
type ErrorCode int

const (
	// TypeMismatch: operands or elements of incompatible static types
	// were combined.
	TypeMismatch ErrorCode = iota + 1
	// UnknownMember: a path traversed to a property or link that does
	// not exist on the subject's type.
	UnknownMember
	// DanglingScopeReference: a scope binding was used outside the
	// callback that introduced it.
	DanglingScopeReference
	// MultiplyScopedExpression: an expression was claimed by more than
	// one explicit with() call.
	MultiplyScopedExpression
)

func (c ErrorCode) String() string {
	switch c {
	case TypeMismatch:
		return "TypeMismatch"
	case UnknownMember:
		return "UnknownMember"
	case DanglingScopeReference:
		return "DanglingScopeReference"
	case MultiplyScopedExpression:
		return "MultiplyScopedExpression"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}

// Error is the construction-time error value. Constructors raise it as
// a panic at the offending call so that no partially built node can
// escape; Catch converts the panic back to an ordinary error at API
// boundaries that want one.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("edgeql: %s: %s", e.Code, e.Message)
}

func errf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func raise(code ErrorCode, format string, args ...any) {
	panic(errf(code, format, args...))
}

// Catch runs fn and converts a construction-time panic into the
// returned error. Panics that are not *Error values propagate.
func Catch(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(*Error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()
	fn()
	return nil
}
