package catalog

import (
	"errors"
	"time"
)

var ErrProductNotFound = errors.New("product not found")

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	Stock       int       `json:"stock"`
	Active      bool      `json:"is_active"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DeleteMode says what deleting a product actually did. A product referenced
// by historical order items is deactivated so old orders keep their join;
// an unreferenced one is purged outright.
type DeleteMode int

const (
	DeletePurged DeleteMode = iota
	DeleteDeactivated
)

func (m DeleteMode) String() string {
	if m == DeleteDeactivated {
		return "deactivated"
	}
	return "purged"
}
