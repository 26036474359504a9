package orders

import "time"

// ShippingAddress is captured at checkout and frozen on the order,
// independent of whatever default address the user stores later.
type ShippingAddress struct {
	FirstName string `json:"shipping_first_name"`
	LastName  string `json:"shipping_last_name"`
	Country   string `json:"shipping_country"`
	Address   string `json:"shipping_address"`
	Address2  string `json:"shipping_address2,omitempty"`
	City      string `json:"shipping_city"`
	State     string `json:"shipping_state"`
	Zip       string `json:"shipping_zip"`
	Phone     string `json:"shipping_phone,omitempty"`
}

type Order struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	TotalCents    int64           `json:"total_cents"`
	Status        Status          `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	PaymentID     string          `json:"payment_id,omitempty"`
	Shipping      ShippingAddress `json:"shipping"`
	Items         []Item          `json:"items,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Item freezes quantity, price and subtotal at order creation. The product
// name is snapshotted too so order views survive catalog edits.
type Item struct {
	ID            string `json:"id"`
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	Quantity      int    `json:"quantity"`
	PriceCents    int64  `json:"price_cents"`
	SubtotalCents int64  `json:"subtotal_cents"`
}
