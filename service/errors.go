package service

import (
	"errors"
	"fmt"
)

// Error taxonomy consumed by the transport layer. Conflict is a routine
// race-loss outcome, recoverable by re-querying and retrying with fresh data;
// it is never retried here.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrInvalidState   = errors.New("invalid state")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("order no longer available")
)

type InsufficientStockError struct {
	ProductID   int64
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q", e.ProductName)
}
