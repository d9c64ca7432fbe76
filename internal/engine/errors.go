package engine

import (
	"fmt"
	"net/http"
)

// Code identifies a failure class in the engine's error taxonomy.  The
// API surface maps each code onto an HTTP status; adapter errors that are
// not recognized are wrapped as CodeStoreUnavailable.
type Code string

const (
	CodeValidation       Code = "ValidationError"
	CodeAuthentication   Code = "AuthenticationError"
	CodeAuthorization    Code = "AuthorizationError"
	CodeNotFound         Code = "NotFound"
	CodeConflict         Code = "Conflict"
	CodeSeatLock         Code = "SeatLockError"
	CodePayment          Code = "PaymentError"
	CodeStoreUnavailable Code = "StoreUnavailable"
)

// Error is the typed error every engine operation returns.  Details carry
// machine-readable context such as the remaining lock TTL or the current
// reservation status.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HTTPStatus maps the error code onto its HTTP status.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeAuthentication:
		return http.StatusUnauthorized
	case CodeAuthorization:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeSeatLock:
		return http.StatusLocked
	case CodePayment:
		return http.StatusPaymentRequired
	default:
		return http.StatusServiceUnavailable
	}
}

// withDetail returns the error with one detail key set, allocating the
// map lazily.
func (e *Error) withDetail(key string, val any) *Error {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = val
	return e
}

func validationErr(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

func notFoundErr(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func conflictErr(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

func seatLockErr(msg string) *Error {
	return &Error{Code: CodeSeatLock, Message: msg}
}

func paymentErr(msg string) *Error {
	return &Error{Code: CodePayment, Message: msg}
}

// unavailableErr wraps an unrecognized adapter failure.  The underlying
// error is logged by the caller, not leaked to clients.
func unavailableErr(op string) *Error {
	return &Error{Code: CodeStoreUnavailable, Message: op + " temporarily unavailable"}
}
