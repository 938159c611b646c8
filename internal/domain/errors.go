package domain

import "errors"

var (
	// ErrCurrencyMismatch rejects arithmetic or comparison across currencies,
	// and order lines whose currency differs from the order's.
	ErrCurrencyMismatch = errors.New("currency mismatch")

	// ErrInvalidQuantity rejects line items with quantity < 1.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrEmptyOrder rejects confirming an order with no items.
	ErrEmptyOrder = errors.New("cannot confirm an empty order")

	// ErrOrderNotModifiable rejects item changes outside the Pending status.
	ErrOrderNotModifiable = errors.New("order is not modifiable")

	// ErrOrderCannotBeCancelled rejects cancel on shipped, delivered or
	// already cancelled orders.
	ErrOrderCannotBeCancelled = errors.New("order cannot be cancelled")

	// ErrInvalidTransition rejects a fulfillment step taken out of order,
	// e.g. shipping an order that was never paid.
	ErrInvalidTransition = errors.New("invalid status transition")
)
