package ipc

import (
	"errors"
	"fmt"
)

// ResultCode is the 32-bit status word leading every reply. Zero is
// success; anything else identifies a specific expected failure.
type ResultCode uint32

const (
	// ResultSuccess acknowledges a completed command.
	ResultSuccess ResultCode = 0x0

	// ResultNotImplemented is produced by the generic dispatch convention
	// for command ids that have no handler bound.
	ResultNotImplemented ResultCode = 0xF0010001

	// ResultUnknownFailure covers errors that carry no result code of
	// their own when they cross the wire boundary.
	ResultUnknownFailure ResultCode = 0xF001FFFF
)

// Failed reports whether the code denotes a failure.
func (c ResultCode) Failed() bool { return c != ResultSuccess }

// String renders the code the way it appears in diagnostics.
func (c ResultCode) String() string { return fmt.Sprintf("0x%08X", uint32(c)) }

// Error is a failure that carries a wire result code. All expected
// broker outcomes are values of this type so they can flow through Go
// error returns and still cross the wire as numeric codes.
type Error struct {
	Code ResultCode
	msg  string
}

// NewError creates a coded error.
func NewError(code ResultCode, msg string) *Error {
	return &Error{Code: code, msg: msg}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s)", e.msg, e.Code)
}

// CodeOf extracts the wire result code from an error chain. Errors
// without a code map to ResultUnknownFailure; nil maps to success.
func CodeOf(err error) ResultCode {
	if err == nil {
		return ResultSuccess
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ResultUnknownFailure
}
