package shopapi

import (
	"errors"
	"fmt"
)

// Kind classifies why a call failed.
type Kind int

const (
	// KindValidation: the backend answered 2xx but its envelope code was
	// not 200. Message is the envelope message.
	KindValidation Kind = iota + 1
	// KindTransport: the request went out and no usable response came back
	// (network error, timeout, unreadable body).
	KindTransport
	// KindServerStatus: the backend answered with a non-2xx HTTP status.
	KindServerStatus
	// KindRequest: the request could not be built.
	KindRequest
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindServerStatus:
		return "server_status"
	case KindRequest:
		return "request"
	default:
		return "unknown"
	}
}

// Reason refines KindServerStatus for call sites that look at the status
// code themselves (Login).
type Reason int

const (
	ReasonNone Reason = iota
	ReasonWrongPassword
	ReasonNoSuchUser
	ReasonServerError
)

func (r Reason) String() string {
	switch r {
	case ReasonWrongPassword:
		return "wrong_password"
	case ReasonNoSuchUser:
		return "no_such_user"
	case ReasonServerError:
		return "server_error"
	default:
		return "none"
	}
}

// Error is the error every operation returns.
type Error struct {
	Op      string // operation name, e.g. "FindOrderByID"
	Kind    Kind
	Reason  Reason
	Status  int // HTTP status, 0 when no response arrived
	Code    int // envelope code, 0 when absent
	Message string
	Err     error // underlying transport or decode error, if any
}

func (e *Error) Error() string {
	return fmt.Sprintf("shopapi: %s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// ReasonOf returns the Reason carried by err, or ReasonNone.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ReasonNone
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
