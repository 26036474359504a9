package orders

// CartLine is a cart row joined with the live product at checkout time.
// Price and stock come from the products table, never from the client.
type CartLine struct {
	ProductID   string
	ProductName string
	Quantity    int
	PriceCents  int64
	Stock       int
	Active      bool
}

func (a ShippingAddress) Validate() error {
	var missing []string
	required := []struct {
		field, value string
	}{
		{"shipping_first_name", a.FirstName},
		{"shipping_last_name", a.LastName},
		{"shipping_country", a.Country},
		{"shipping_address", a.Address},
		{"shipping_city", a.City},
		{"shipping_state", a.State},
		{"shipping_zip", a.Zip},
	}
	for _, f := range required {
		if f.value == "" {
			missing = append(missing, f.field)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// ValidateLines rejects a checkout whose cart is empty, references an
// inactive product, or exceeds current stock. Stock is only checked here,
// not reserved; it is decremented when the payment is confirmed.
func ValidateLines(lines []CartLine) error {
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	for _, l := range lines {
		if !l.Active {
			return &ProductUnavailableError{ProductName: l.ProductName}
		}
		if l.Quantity > l.Stock {
			return &InsufficientStockError{
				ProductName: l.ProductName,
				Requested:   l.Quantity,
				Available:   l.Stock,
			}
		}
	}
	return nil
}

// Total sums price x quantity per line, in cents.
func Total(lines []CartLine) int64 {
	var total int64
	for _, l := range lines {
		total += l.PriceCents * int64(l.Quantity)
	}
	return total
}
