package engine

import (
	"errors"
	"fmt"
)

// Error is returned for mutations the engine refuses.
//
// The engine never reports remote failures as errors; those degrade to the
// offline path. Error covers caller mistakes only.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// OrderID identifies the affected order, if any.
	OrderID string

	// ItemID identifies the affected menu item, if any.
	ItemID string

	// Details contains additional context.
	Details map[string]string
}

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeInvalidOrder indicates an order fails structural validation.
	ErrCodeInvalidOrder ErrorCode = "INVALID_ORDER"

	// ErrCodeDuplicateOrder indicates an order id already exists locally
	// or in the offline queue.
	ErrCodeDuplicateOrder ErrorCode = "DUPLICATE_ORDER"

	// ErrCodeUnknownOrder indicates no order has the given id.
	ErrCodeUnknownOrder ErrorCode = "UNKNOWN_ORDER"

	// ErrCodeInvalidTransition indicates a status change the lifecycle forbids.
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"

	// ErrCodeInvalidMenuItem indicates a menu item fails validation.
	ErrCodeInvalidMenuItem ErrorCode = "INVALID_MENU_ITEM"

	// ErrCodeDuplicateMenuItem indicates a menu item id is already taken.
	ErrCodeDuplicateMenuItem ErrorCode = "DUPLICATE_MENU_ITEM"

	// ErrCodeUnknownMenuItem indicates no menu item has the given id.
	ErrCodeUnknownMenuItem ErrorCode = "UNKNOWN_MENU_ITEM"

	// ErrCodeInvalidEventConfig indicates event settings out of bounds.
	ErrCodeInvalidEventConfig ErrorCode = "INVALID_EVENT_CONFIG"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.OrderID != "":
		return fmt.Sprintf("%s: %s (order=%s)", e.Code, e.Message, e.OrderID)
	case e.ItemID != "":
		return fmt.Sprintf("%s: %s (item=%s)", e.Code, e.Message, e.ItemID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsCode reports whether err is an *Error with the given code.
// Uses errors.As to handle wrapped errors.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

func orderError(code ErrorCode, id, format string, args ...any) *Error {
	return &Error{Code: code, OrderID: id, Message: fmt.Sprintf(format, args...)}
}

func menuError(code ErrorCode, id, format string, args ...any) *Error {
	return &Error{Code: code, ItemID: id, Message: fmt.Sprintf(format, args...)}
}
