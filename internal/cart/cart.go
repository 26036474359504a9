package cart

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrItemNotFound    = errors.New("cart item not found")
	ErrProductNotFound = errors.New("product not found")
	ErrProductInactive = errors.New("product is not available")
)

// InsufficientStockError distinguishes "you already have some in the cart"
// so the message can say why a small add was rejected.
type InsufficientStockError struct {
	Available int
	InCart    int
}

func (e *InsufficientStockError) Error() string {
	if e.InCart > 0 {
		return fmt.Sprintf("insufficient stock: available %d, already in cart %d", e.Available, e.InCart)
	}
	return fmt.Sprintf("insufficient stock: available %d", e.Available)
}

// Line is a cart row joined with its live product.
type Line struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	ProductName   string    `json:"product_name"`
	PriceCents    int64     `json:"price_cents"`
	Stock         int       `json:"stock"`
	Active        bool      `json:"is_active"`
	ImageURL      string    `json:"image_url,omitempty"`
	Quantity      int       `json:"quantity"`
	SubtotalCents int64     `json:"subtotal_cents"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// View is what GET /cart returns.
type View struct {
	Count      int    `json:"count"`
	TotalCents int64  `json:"total_cents"`
	Items      []Line `json:"items"`
}

// MergeLine is one locally-held line handed up at login.
type MergeLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
