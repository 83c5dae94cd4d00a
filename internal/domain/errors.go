package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine readable class of a failure, surfaced to clients.
type ErrorKind string

const (
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindConflict            ErrorKind = "CONFLICT"
	KindInsufficientBalance ErrorKind = "INSUFFICIENT_BALANCE"
	KindNoSeatsAvailable    ErrorKind = "NO_SEATS_AVAILABLE"
	KindAlreadyCancelled    ErrorKind = "ALREADY_CANCELLED"
	KindValidation          ErrorKind = "VALIDATION_FAILED"
	KindTransient           ErrorKind = "TRANSIENT"
	KindInternal            ErrorKind = "INTERNAL"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("request conflicts with existing data")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrNoSeatsAvailable    = errors.New("no seats available on this flight")
	ErrAlreadyCancelled    = errors.New("booking is already cancelled")
	ErrValidation          = errors.New("validation failed")
	ErrTransient           = errors.New("temporarily unavailable, retry the request")
)

var (
	ErrFlightNotFound  = fmt.Errorf("flight %w", ErrNotFound)
	ErrBookingNotFound = fmt.Errorf("booking %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)

	// ErrPNRTaken is returned by the booking store when the generated PNR
	// collided with an existing booking at insert time.
	ErrPNRTaken = fmt.Errorf("pnr already in use: %w", ErrConflict)
)

// InsufficientBalanceError carries the figures a client needs to tell the
// user how much to add.
type InsufficientBalanceError struct {
	Required  Money
	Available Money
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient wallet balance: required %s, available %s", e.Required, e.Available)
}

func (e *InsufficientBalanceError) Shortfall() Money {
	if e.Available >= e.Required {
		return 0
	}
	return e.Required - e.Available
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// ValidationError wraps a shape-level problem with the offending field.
func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// KindOf classifies err. Unknown errors are KindInternal.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTransient):
		return KindTransient
	case errors.Is(err, ErrInsufficientBalance):
		return KindInsufficientBalance
	case errors.Is(err, ErrNoSeatsAvailable):
		return KindNoSeatsAvailable
	case errors.Is(err, ErrAlreadyCancelled):
		return KindAlreadyCancelled
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidAmount):
		return KindValidation
	default:
		return KindInternal
	}
}

// Retryable reports whether the client may safely repeat the request.
func Retryable(err error) bool {
	return KindOf(err) == KindTransient
}
