package app

import (
	"errors"
	"fmt"
)

// Error is returned for customer and staff actions the facade refuses.
type Error struct {
	Code    ErrorCode
	Message string
}

// ErrorCode categorizes facade errors.
type ErrorCode string

const (
	ErrCodeEmptyCart           ErrorCode = "EMPTY_CART"
	ErrCodeTableOutOfRange     ErrorCode = "TABLE_OUT_OF_RANGE"
	ErrCodeItemUnavailable     ErrorCode = "ITEM_UNAVAILABLE"
	ErrCodeUnknownCartLine     ErrorCode = "UNKNOWN_CART_LINE"
	ErrCodeInvalidOption       ErrorCode = "INVALID_OPTION"
	ErrCodeUnsupportedLanguage ErrorCode = "UNSUPPORTED_LANGUAGE"
)

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCode reports whether err is an *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
