// Package validation carries the coded validation signals returned by the
// order and debtor computations. They are ordinary error values so the
// transport layer can render field errors with errors.As.
package validation

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeInvalidDueDate            Code = "INVALID_DUE_DATE"
	CodePaymentMethodDebtMismatch Code = "PAYMENT_METHOD_DEBT_MISMATCH"
	CodeInvalidPaymentAmount      Code = "INVALID_PAYMENT_AMOUNT"
	CodeNoLineItems               Code = "NO_LINE_ITEMS"
	CodePriceNotEditable          Code = "PRICE_NOT_EDITABLE"
	CodeUnknownPaymentMethod      Code = "UNKNOWN_PAYMENT_METHOD"
	CodeInsufficientStock         Code = "INSUFFICIENT_STOCK"
)

var (
	ErrInvalidDueDate            = errors.New("invalid due date")
	ErrPaymentMethodDebtMismatch = errors.New("payment method does not allow outstanding debt")
	ErrInvalidPaymentAmount      = errors.New("payment amount must be positive")
	ErrNoLineItems               = errors.New("order has no line items")
	ErrPriceNotEditable          = errors.New("split price cannot be edited")
	ErrUnknownPaymentMethod      = errors.New("unknown payment method")
	ErrInsufficientStock         = errors.New("not enough stock")
)

var codes = map[error]Code{
	ErrInvalidDueDate:            CodeInvalidDueDate,
	ErrPaymentMethodDebtMismatch: CodePaymentMethodDebtMismatch,
	ErrInvalidPaymentAmount:      CodeInvalidPaymentAmount,
	ErrNoLineItems:               CodeNoLineItems,
	ErrPriceNotEditable:          CodePriceNotEditable,
	ErrUnknownPaymentMethod:      CodeUnknownPaymentMethod,
	ErrInsufficientStock:         CodeInsufficientStock,
}

// Error wraps a sentinel with the offending field and a readable detail.
type Error struct {
	Err     error
	Field   string
	Details string
}

// New wraps err for field. Details are optional.
func New(err error, field string, details string) *Error {
	return &Error{Err: err, Field: field, Details: details}
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns the external code of the wrapped sentinel.
func (e *Error) Code() Code {
	return codes[e.Err]
}

// CodeOf extracts the code from any error chain, or "" when err is not a
// validation signal.
func CodeOf(err error) Code {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Code()
	}
	for sentinel, code := range codes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return ""
}
