// Package domain holds the value types and structured errors shared by every
// worker: tickets, service types, queue info, device status, and the error
// taxonomy from which Network, Primary, and Indicator all recover locally.
package domain

import (
	"errors"
	"fmt"
)

// ErrorCode is a high-level error category, analogous to the source
// device's TransportFailure / PrinterUnavailable / InvalidConfig taxonomy.
type ErrorCode string

const (
	ErrCodeTransportFailure    ErrorCode = "transport failure"
	ErrCodePrinterUnavailable  ErrorCode = "printer unavailable"
	ErrCodeInvalidConfig       ErrorCode = "invalid config"
	ErrCodeInvalidTicketNumber ErrorCode = "invalid ticket number"
	ErrCodeQueueFull           ErrorCode = "queue full"
	ErrCodePendingOverflow     ErrorCode = "pending queue overflow"
)

// Error is a structured error with context, mirroring the shape used
// throughout this codebase: an operation name, an error code, a message,
// and an optional wrapped cause.
type Error struct {
	Op    string
	Code  ErrorCode
	Msg   string
	Inner error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Op != "" {
		return fmt.Sprintf("dispenser: %s: %s (op=%s)", e.Code, msg, e.Op)
	}
	return fmt.Sprintf("dispenser: %s: %s", e.Code, msg)
}

func (e *Error) Unwrap() error {
	return e.Inner
}

func (e *Error) Is(target error) bool {
	var de *Error
	if errors.As(target, &de) {
		return e.Code == de.Code
	}
	return false
}

// New creates a structured error with no wrapped cause.
func New(op string, code ErrorCode, msg string) *Error {
	return &Error{Op: op, Code: code, Msg: msg}
}

// Wrap wraps an existing error with dispenser context. If inner is already
// a *Error, its code, Msg and inner cause are preserved and only Op is
// refreshed.
func Wrap(op string, code ErrorCode, inner error) *Error {
	if inner == nil {
		return nil
	}
	var de *Error
	if errors.As(inner, &de) {
		return &Error{Op: op, Code: de.Code, Msg: de.Msg, Inner: de.Inner}
	}
	return &Error{Op: op, Code: code, Msg: inner.Error(), Inner: inner}
}

// IsCode reports whether err is (or wraps) a *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
