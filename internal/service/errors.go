package service

import (
	"errors"
)

var (
	ErrUnauthenticated    = errors.New("sign in required")
	ErrForbidden          = errors.New("not allowed for this account")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")

	ErrCarNotFound     = errors.New("car not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrDamageNotFound  = errors.New("damage request not found")
	ErrUserNotFound    = errors.New("user not found")

	ErrOutOfStock        = errors.New("this car is currently out of stock")
	ErrInvalidTransition = errors.New("booking cannot change to that status")
	ErrActiveBookings    = errors.New("account has active bookings")
	ErrActiveRentals     = errors.New("active rentals exist")
	ErrAlreadyPaid       = errors.New("damage charge already paid")
	ErrAlreadyRefunded   = errors.New("booking already refunded")
	ErrAlreadyInspected  = errors.New("booking already inspected")
)

// userError carries a message meant for the person at the form and matches
// one of the sentinels above through errors.Is.
type userError struct {
	msg  string
	kind error
}

func (e *userError) Error() string        { return e.msg }
func (e *userError) Is(target error) bool { return target == e.kind }

func invalid(msg string) error { return &userError{msg: msg, kind: ErrValidation} }

func badCredentials(msg string) error { return &userError{msg: msg, kind: ErrInvalidCredentials} }

func emailTaken(msg string) error { return &userError{msg: msg, kind: ErrEmailTaken} }
