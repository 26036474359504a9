package payments

import (
	"encoding/json"
	"time"
)

// Kafka topic for the downstream fulfillment hook.
const TopicOrderPaid = "order.paid"

const EventOrderPaid = "OrderPaid"

type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

type OrderPaidPayload struct {
	OrderID    string `json:"order_id"`
	UserID     string `json:"user_id"`
	TotalCents int64  `json:"total_cents"`
	PaymentID  string `json:"payment_id"`
}
