package payments

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/catfecito/storefront/internal/kafka"
	"github.com/catfecito/storefront/internal/orders"
	"github.com/catfecito/storefront/internal/redisx"
)

// Notification is the gateway webhook body. It only signals that a payment
// changed; the authoritative state is fetched afterwards.
type Notification struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// PaymentFetcher is implemented by *Client.
type PaymentFetcher interface {
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
}

// ReconcileLedger is the transactional apply step; the row lock and the
// idempotency guard live behind it.
type ReconcileLedger interface {
	ApplyPaymentUpdate(ctx context.Context, orderID, gatewayStatus, paymentID string) (orders.ReconcileOutcome, error)
}

// Hook receives the post-commit order.paid event. *kafka.Producer satisfies
// it.
type Hook interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Reconciler folds asynchronous, at-least-once payment notifications into
// durable state exactly once.
type Reconciler struct {
	Gateway PaymentFetcher
	Ledger  ReconcileLedger
	Hook    Hook          // optional; nil disables the fulfillment event
	Redis   *redis.Client // optional; fast-path dedup and cache invalidation
	Service string
	Logger  *slog.Logger
}

// HandleNotification processes one webhook delivery. A nil return means the
// notification was consumed (including the intentionally-ignored cases) and
// the gateway should not retry; an error means nothing was applied and a
// retry is wanted.
func (r *Reconciler) HandleNotification(ctx context.Context, n Notification) error {
	if n.Type != "payment" {
		r.Logger.Info("ignoring non-payment notification", "type", n.Type)
		return nil
	}
	if n.Data.ID == "" {
		r.Logger.Warn("payment notification without id")
		return nil
	}

	pay, err := r.Gateway.GetPayment(ctx, n.Data.ID)
	if err != nil {
		return fmt.Errorf("fetch payment %s: %w", n.Data.ID, err)
	}
	if pay.ExternalReference == "" {
		r.Logger.Warn("payment has no external reference, nothing to reconcile", "payment_id", pay.ID)
		return nil
	}

	// Fast-path dedup on (payment, status). Purely an accelerator: the row
	// lock plus guard in the ledger is what actually makes replays safe.
	dedupKey := fmt.Sprintf(redisx.KeyWebhookDedup, pay.ID, pay.Status)
	if r.Redis != nil {
		if seen, _ := redisx.Exists(ctx, r.Redis, dedupKey); seen {
			r.Logger.Info("duplicate notification short-circuited", "payment_id", pay.ID, "status", pay.Status)
			return nil
		}
	}

	out, err := r.Ledger.ApplyPaymentUpdate(ctx, pay.ExternalReference, pay.Status, pay.ID)
	if err != nil {
		return fmt.Errorf("apply payment update for order %s: %w", pay.ExternalReference, err)
	}

	switch out.Result {
	case orders.ReconcileOrderNotFound:
		r.Logger.Warn("notification references unknown order", "order_id", pay.ExternalReference, "payment_id", pay.ID)
		return nil
	case orders.ReconcileAlreadyProcessed:
		r.Logger.Info("order already paid, notification is a no-op", "order_id", out.OrderID)
	case orders.ReconcilePaid:
		r.Logger.Info("order paid, stock decremented, cart cleared",
			"order_id", out.OrderID, "payment_id", pay.ID, "total_cents", out.TotalCents)
		r.publishPaid(out, pay.ID)
	case orders.ReconcileStatusRecorded:
		r.Logger.Info("payment status recorded", "order_id", out.OrderID, "payment_status", out.PaymentStatus)
	}

	if r.Redis != nil {
		_ = r.Redis.Set(ctx, dedupKey, "1", redisx.TTLDedup).Err()
		// Status changed; drop the cached pair rather than guessing it.
		_ = r.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, out.UserID, out.OrderID)).Err()
	}
	return nil
}

// publishPaid queues the fulfillment event after the transaction committed.
// The producer is fire-and-forget; a broker failure is logged there and
// never affects the webhook response.
func (r *Reconciler) publishPaid(out orders.ReconcileOutcome, paymentID string) {
	if r.Hook == nil {
		return
	}
	ev := Envelope{
		EventID:      uuid.NewString(),
		EventType:    EventOrderPaid,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     r.Service,
		Payload: kafkax.MustMarshal(OrderPaidPayload{
			OrderID:    out.OrderID,
			UserID:     out.UserID,
			TotalCents: out.TotalCents,
			PaymentID:  paymentID,
		}),
	}
	r.Hook.Publish([]byte(out.OrderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderPaid)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
