package engine

import "fmt"

// --------------------------------------------------------------------------
// Error Codes
// --------------------------------------------------------------------------

// ErrCode classifies the request-level failures of the engine. The codes
// are stable so that a protocol layer can map them to wire-level status
// codes.
type ErrCode uint8

const (
	ErrCKeyNotFound        ErrCode = iota // 0: operation required existence, key absent
	ErrCTypeMismatch                      // 1: key exists with a different value variant
	ErrCInvalidArgument                   // 2: wrong arity, malformed encoding, out-of-range index
	ErrCArithmeticOverflow                // 3: result would exceed the representable range
	ErrCTimedOut                          // 4: blocking wait exceeded its deadline
	ErrCCancelled                         // 5: caller-initiated cancellation of a pending wait
	ErrCUnknownOperation                  // 6: operation name not recognized
)

func (c ErrCode) String() string {
	switch c {
	case ErrCKeyNotFound:
		return "KeyNotFound"
	case ErrCTypeMismatch:
		return "TypeMismatch"
	case ErrCInvalidArgument:
		return "InvalidArgument"
	case ErrCArithmeticOverflow:
		return "ArithmeticOverflow"
	case ErrCTimedOut:
		return "TimedOut"
	case ErrCCancelled:
		return "Cancelled"
	case ErrCUnknownOperation:
		return "UnknownOperation"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is the uniform error shape produced by the dispatcher. All
// request-level failures are returned as values; the engine never panics
// on a malformed request.
type Error struct {
	Code ErrCode // the error classification
	Msg  string  // the error message
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("EngineError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new engine Error with the given code and message.
func NewError(code ErrCode, format string, args ...interface{}) *Error {
	return &Error{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// CodeOf extracts the ErrCode from an error returned by the engine.
// Non-engine errors report ErrCInvalidArgument.
func CodeOf(err error) ErrCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ErrCInvalidArgument
}
