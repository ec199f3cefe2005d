package goerror

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that the requested resource could not be found.
	ErrNotFound = errors.New("resource not found")

	// ErrLockTimeout indicates a per-key lock could not be acquired in time.
	ErrLockTimeout = errors.New("lock acquisition timed out")
)

// Type classifies errors into high-level buckets used by the application.
type Type int

const (
	// TypeServer represents server-side failures.
	TypeServer Type = iota
	// TypeBusiness represents business rule violations.
	TypeBusiness
	// TypeValidation represents input validation failures.
	TypeValidation
)

// String returns the string representation of the error type.
func (t Type) String() string {
	switch t {
	case TypeValidation:
		return "ERROR_TYPE_VALIDATION"
	case TypeBusiness:
		return "ERROR_TYPE_BUSINESS"
	case TypeServer:
		return "ERROR_TYPE_SERVER"
	default:
		return "ERROR_TYPE_UNKNOWN"
	}
}

// Code is a stable identifier carried by every Error.
type Code int

const (
	// CodeInternal represents an internal or unspecified error.
	CodeInternal Code = iota
	// CodeInvalidFormat indicates an input that could not be parsed.
	CodeInvalidFormat
	// CodeInvalidInput indicates an input that failed validation.
	CodeInvalidInput
	// CodeUnavailable indicates a backing dependency could not serve the call.
	CodeUnavailable
)

// String returns the string representation of the error code.
func (c Code) String() string {
	switch c {
	case CodeInvalidFormat:
		return "ERROR_CODE_INVALID_FORMAT"
	case CodeInvalidInput:
		return "ERROR_CODE_INVALID_INPUT"
	case CodeUnavailable:
		return "ERROR_CODE_UNAVAILABLE"
	default:
		return "ERROR_CODE_INTERNAL"
	}
}

// Error is a structured error used across the application.
//
// It can wrap an underlying error while also carrying a user-facing message,
// a high-level type, a stable error code and per-field validation messages.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err != nil {
		return e.err.Error()
	}

	if e.msg != "" {
		return e.msg
	}

	switch e.errType {
	case TypeValidation:
		return "Validation violation"
	case TypeBusiness:
		return "Logical business not meet with requirement"
	default:
		return "Internal error"
	}
}

// String returns a verbose representation of the error for debugging/logging.
func (e *Error) String() string {
	return fmt.Sprintf(
		"Error Type: %s, Code: %s, Message: %s, Underlying Error: %v",
		e.errType.String(),
		e.code.String(),
		e.msg,
		e.err,
	)
}

// Msg returns the user-facing error message, if set.
func (e *Error) Msg() string { return e.msg }

// Type returns the high-level error type.
func (e *Error) Type() Type { return e.errType }

// Code returns the stable error code.
func (e *Error) Code() Code { return e.code }

// Fields returns validation errors (field to message map), if any.
func (e *Error) Fields() map[string]string { return e.fields }

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.err }

func newError(err error, msg string, et Type, code Code) *Error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer creates a server-type error wrapping err.
//
// Lock timeouts are tagged CodeUnavailable so callers can tell a busy
// identifier from a broken backend.
func NewServer(err error) error {
	if errors.Is(err, ErrLockTimeout) {
		return newError(err, "Service temporarily unavailable", TypeServer, CodeUnavailable)
	}
	return newError(err, "Internal server error", TypeServer, CodeInternal)
}

// NewBusiness creates a business-type error with the specified message and code.
func NewBusiness(msg string, code Code) error {
	return newError(nil, msg, TypeBusiness, code)
}

// NewInvalidInput creates a validation error.
//
// When err is nil the remaining arguments are read as field/message pairs.
func NewInvalidInput(err error, kv ...string) error {
	if err != nil {
		ge := newError(err, "Validation error", TypeValidation, CodeInvalidInput)
		var fielder interface{ Values() map[string]string }
		if errors.As(err, &fielder) {
			ge.fields = fielder.Values()
		}
		return ge
	}

	if len(kv)%2 != 0 {
		return newError(nil, "Invalid input format", TypeValidation, CodeInvalidFormat)
	}

	ge := newError(nil, "Validation error", TypeValidation, CodeInvalidInput)
	ge.fields = make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		ge.fields[kv[i]] = kv[i+1]
	}

	return ge
}

// IsInvalidInput reports whether err is a validation error.
func IsInvalidInput(err error) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.errType == TypeValidation
}

// IsServer reports whether err is a server error.
func IsServer(err error) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.errType == TypeServer
}
