package astc

import (
	"errors"
	"fmt"
)

// ErrorCode classifies pipeline errors.
type ErrorCode uint32

const (
	// Success means no error.
	Success ErrorCode = 0

	// ErrOutOfMem is returned when the output buffer cannot be allocated.
	ErrOutOfMem ErrorCode = 1

	// ErrBadParam is returned for invalid arguments that are not contract violations.
	ErrBadParam ErrorCode = 3

	// ErrBadBlockSize is returned for footprints that are not legal ASTC sizes.
	ErrBadBlockSize ErrorCode = 4

	// ErrBadFormat is returned when a GL format/type pair has no conversion.
	ErrBadFormat ErrorCode = 5

	// ErrBadData is returned by the container and block parsers.
	ErrBadData ErrorCode = 6
)

// ErrorString returns the symbolic name of code, or "" for unknown codes.
func ErrorString(code ErrorCode) string {
	switch code {
	case Success:
		return "SUCCESS"
	case ErrOutOfMem:
		return "ERR_OUT_OF_MEM"
	case ErrBadParam:
		return "ERR_BAD_PARAM"
	case ErrBadBlockSize:
		return "ERR_BAD_BLOCK_SIZE"
	case ErrBadFormat:
		return "ERR_BAD_FORMAT"
	case ErrBadData:
		return "ERR_BAD_DATA"
	default:
		return ""
	}
}

// Error is a typed error that carries an ErrorCode.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return e.Msg
	}
	if s := ErrorString(e.Code); s != "" {
		return "astc: " + s
	}
	return "astc: error"
}

// ErrorCodeOf returns the code carried by err, or Success for nil.
//
// For non-*Error errors it returns ErrBadParam.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrBadParam
}

func newError(code ErrorCode, msg string) error {
	return &Error{Code: code, Msg: msg}
}

// contractViolation aborts on caller bugs that have no runtime recovery path.
func contractViolation(format string, args ...any) {
	panic(fmt.Sprintf("astc: "+format, args...))
}
