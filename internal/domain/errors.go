package domain

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorNotFound     = "NOT_FOUND"
	ErrorInvalidInput = "INVALID_INPUT"
)

const (
	MsgPaymentNotFound = "payment not found"
	MsgOrderNotFound   = "order not found"
	MsgAmountMismatch  = "payment amount does not match order total"
)

// NotFound reports a referenced record that does not exist.
func NotFound(message string) error {
	return goerrors.New(message, goerrors.CategoryNotFound).
		WithTextCode(ErrorNotFound)
}

// InvalidInput reports an event that can never be applied as sent.
func InvalidInput(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithTextCode(ErrorInvalidInput)
}

// IsNotFound and IsInvalidInput classify errors produced by this package,
// including wrapped ones.
func IsNotFound(err error) bool {
	return hasCategory(err, goerrors.CategoryNotFound)
}

func IsInvalidInput(err error) bool {
	return hasCategory(err, goerrors.CategoryBadInput)
}

func hasCategory(err error, category goerrors.Category) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.Category == category
}
