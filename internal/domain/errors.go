package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidQuantity is returned for cart quantities below 1.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	// ErrEmptyCart is returned when checkout finds no cart lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidTransition is returned when an order is not in a state that allows the action.
	ErrInvalidTransition = errors.New("invalid order transition")
	// ErrInvalidPhone is returned when a delivery phone and its confirmation do not match.
	ErrInvalidPhone = errors.New("phone and confirmation must match and have at least 10 digits")
)

// ValidationError reports invalid input. Handlers answer it with 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// Invalid returns a ValidationError with the given message.
func Invalid(msg string) error {
	return &ValidationError{Msg: msg}
}

// Invalidf formats a ValidationError message.
func Invalidf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
