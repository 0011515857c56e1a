package fee

import "errors"

var (
	// ErrConversionUnavailable marks a fee component that could not be
	// converted into the target currency and was left out of the total.
	ErrConversionUnavailable = errors.New("conversion unavailable")

	// ErrInvalidAmount is recorded when the amount is not a finite number > 0.
	ErrInvalidAmount = errors.New("amount must be greater than zero")

	// ErrInvalidCurrency is recorded when the target currency code is malformed.
	ErrInvalidCurrency = errors.New("invalid target currency")

	// ErrUnrecognized is recorded when the fee string has no numeric component.
	ErrUnrecognized = errors.New("fee description not recognised")
)
