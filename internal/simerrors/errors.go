// Package simerrors defines the typed return codes every backtest API
// call surfaces, pared to the six codes the simulation core actually
// raises. No severity/user-id/trace-id fields: the core has no
// multi-tenant or distributed-tracing surface to report into.
package simerrors

import (
	"fmt"
	"time"
)

// Code is the distinct return code of ; zero is success.
type Code int

const (
	OK Code = iota
	DataInvalid
	OrderRejected
	Timeout
	EndOfData
	Stopped
	Internal
)

func (c Code) String() string {
	switch c {
	case OK:
		return "OK"
	case DataInvalid:
		return "DATA_INVALID"
	case OrderRejected:
		return "ORDER_REJECTED"
	case Timeout:
		return "TIMEOUT"
	case EndOfData:
		return "END_OF_DATA"
	case Stopped:
		return "STOPPED"
	case Internal:
		return "INTERNAL"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// Error wraps a Code with a human-readable message and, where applicable,
// the error that triggered it.
type Error struct {
	Code      Code
	Message   string
	Timestamp time.Time
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message, Timestamp: time.Now()}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches code/message context to an existing error. Returns nil
// if err is nil.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	e := New(code, message)
	e.Cause = err
	return e
}

// CodeOf extracts the Code carried by err, or OK if err is nil, or
// Internal if err is a non-simerrors error.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var se *Error
	if As(err, &se) {
		return se.Code
	}
	return Internal
}

// As finds the first *Error in err's chain and assigns it to target.
func As(err error, target **Error) bool {
	for err != nil {
		if se, ok := err.(*Error); ok {
			*target = se
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Terminal reports whether the code ends the backtest loop: EndOfData,
// Stopped and Internal terminate; OrderRejected and Timeout are
// recovered locally by the caller.
func (c Code) Terminal() bool {
	switch c {
	case EndOfData, Stopped, Internal:
		return true
	default:
		return false
	}
}
