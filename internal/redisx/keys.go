package redisx

import "time"

const (
	// Cache of an order's status pair, scoped to the owner so a warm cache
	// can never serve another user's order:
	// order_status:{user_id}:{order_id} -> {"status":"...","payment_status":"..."}
	KeyOrderStatus = "order_status:%s:%s"

	// Webhook dedup fast path: dedup:webhook:{payment_id}:{status}.
	// Postgres row lock is the real guard; this only short-circuits retries.
	KeyWebhookDedup = "dedup:webhook:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
