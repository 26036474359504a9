package orders

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrOrderNotFound = errors.New("order not found")
	ErrAlreadyPaid   = errors.New("order has already been paid")
	ErrNotOwner      = errors.New("order belongs to another user")
	ErrInvalidStatus = errors.New("invalid status transition")
)

// ValidationError reports required shipping fields missing from a checkout
// request.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required shipping fields: " + strings.Join(e.Missing, ", ")
}

// ProductUnavailableError means a cart line references an inactive product.
type ProductUnavailableError struct {
	ProductName string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %q is no longer available", e.ProductName)
}

// InsufficientStockError means a cart line asks for more than is in stock.
type InsufficientStockError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}
