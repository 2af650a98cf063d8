package draw

import "errors"

var (
	// ErrQuotaExhausted is returned when no free spin is left for today.
	ErrQuotaExhausted = errors.New("free spin quota exhausted")

	// ErrInsufficientPoints is returned when a paid draw cannot be afforded.
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrDrawInProgress is returned when the user already has a draw in flight.
	ErrDrawInProgress = errors.New("draw in progress")

	// ErrExhaustedTable means the selector walked the whole table without
	// picking a prize. It always points to a broken prize table.
	ErrExhaustedTable = errors.New("prize table exhausted")

	// ErrItemNotFound is returned when consuming a missing or empty inventory
	// entry.
	ErrItemNotFound = errors.New("inventory item not found")

	// ErrSettlement marks a failure after the cost of a draw has been debited.
	ErrSettlement = errors.New("draw settlement failed")
)
