package order

import (
	"errors"
	"fmt"
)

// Error classes. Match with errors.Is.
var (
	ErrValidation        = errors.New("validation error")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("not found")
)

// ValidationError is malformed input: missing fields, empty item lists,
// non-positive quantities and the like.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Errors returned by the order aggregate.
var (
	ErrEmptyItems      = &ValidationError{Msg: "items are required"}
	ErrMissingTable    = &ValidationError{Msg: "table_number is required for dine-in orders"}
	ErrMissingCustomer = &ValidationError{Msg: "customer name and phone are required for delivery and pickup orders"}
	ErrOrderClosed     = &ValidationError{Msg: "order is closed"}
	ErrInvalidStatus   = &ValidationError{Msg: "invalid status"}

	ErrCancelRestricted = &ValidationError{Msg: "only an admin can cancel an order that has left COOKING"}
)

func itemError(idx int, msg string) error {
	return &ValidationError{Msg: fmt.Sprintf("items[%d]: %s", idx, msg)}
}

// TransitionError is a status change the order's graph does not allow.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	if e.From.Terminal() {
		return fmt.Sprintf("cannot transition from %s", e.From)
	}
	return fmt.Sprintf("cannot transition from %s to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// NotFoundError is a lookup of an id that does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ErrOrderNotFound is returned for unknown order ids.
var ErrOrderNotFound = &NotFoundError{Resource: "order"}
