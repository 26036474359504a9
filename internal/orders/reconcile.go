package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ReconcileResult says what ApplyPaymentUpdate did.
type ReconcileResult int

const (
	ReconcileOrderNotFound ReconcileResult = iota
	ReconcileAlreadyProcessed
	ReconcilePaid
	ReconcileStatusRecorded
)

// ReconcileOutcome carries what post-commit effects need to know.
type ReconcileOutcome struct {
	Result        ReconcileResult
	OrderID       string
	UserID        string
	TotalCents    int64
	PaymentStatus PaymentStatus
}

// ApplyPaymentUpdate folds one gateway payment status into durable state,
// exactly once. The order row is locked for the whole transaction so
// concurrent notifications for the same order serialize; the decision's
// no-op branch makes replays harmless. On approval it decrements stock
// (floored at zero), clears the owner's cart and marks the order paid,
// recording the real payment id. Everything commits or nothing does.
func (r *Repo) ApplyPaymentUpdate(ctx context.Context, orderID, gatewayStatus, paymentID string) (ReconcileOutcome, error) {
	out := ReconcileOutcome{OrderID: orderID}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return out, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status Status
	var payStatus PaymentStatus
	err = tx.QueryRow(ctx, `
		SELECT user_id, status, payment_status, total_cents
		FROM orders WHERE id=$1 FOR UPDATE`, orderID).
		Scan(&out.UserID, &status, &payStatus, &out.TotalCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			out.Result = ReconcileOrderNotFound
			return out, nil
		}
		return out, err
	}

	d := DecidePaymentUpdate(status, payStatus, gatewayStatus)
	switch d.Action {
	case ActionNone:
		out.Result = ReconcileAlreadyProcessed
		out.PaymentStatus = payStatus
		return out, tx.Commit(ctx)

	case ActionApprove:
		itemRows, err := tx.Query(ctx, `
			SELECT product_id, quantity FROM order_items WHERE order_id=$1`, orderID)
		if err != nil {
			return out, err
		}
		type line struct {
			productID string
			qty       int
		}
		var lines []line
		for itemRows.Next() {
			var l line
			if err := itemRows.Scan(&l.productID, &l.qty); err != nil {
				itemRows.Close()
				return out, err
			}
			lines = append(lines, l)
		}
		itemRows.Close()
		if err := itemRows.Err(); err != nil {
			return out, err
		}

		// Floored at zero: stock must never go negative even if a race
		// slipped past checkout validation.
		for _, l := range lines {
			_, err := tx.Exec(ctx, `
				UPDATE products SET stock = GREATEST(stock - $1, 0), updated_at = NOW()
				WHERE id = $2`, l.qty, l.productID)
			if err != nil {
				return out, err
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, out.UserID); err != nil {
			return out, err
		}

		_, err = tx.Exec(ctx, `
			UPDATE orders
			SET status=$1, payment_status=$2, payment_id=$3, updated_at=NOW()
			WHERE id=$4`,
			StatusPaid, PaymentApproved, paymentID, orderID)
		if err != nil {
			return out, err
		}
		out.Result = ReconcilePaid
		out.PaymentStatus = PaymentApproved
		return out, tx.Commit(ctx)

	default: // ActionRecord
		_, err = tx.Exec(ctx, `UPDATE orders SET payment_status=$1, updated_at=NOW() WHERE id=$2`,
			d.PaymentStatus, orderID)
		if err != nil {
			return out, err
		}
		out.Result = ReconcileStatusRecorded
		out.PaymentStatus = d.PaymentStatus
		return out, tx.Commit(ctx)
	}
}

// PaymentOrder is the slice of an order the payment gateway needs to build a
// preference: items with display names and the payer's identity.
type PaymentOrder struct {
	ID            string
	UserID        string
	TotalCents    int64
	Status        Status
	PaymentStatus PaymentStatus
	PayerName     string
	PayerEmail    string
	Items         []PaymentItem
}

type PaymentItem struct {
	ID          string
	Title       string
	Description string
	Quantity    int
	PriceCents  int64
}

// GetForPayment loads the order scoped to its owner together with the payer
// identity and item detail needed for preference creation.
func (r *Repo) GetForPayment(ctx context.Context, orderID, userID string) (*PaymentOrder, error) {
	var po PaymentOrder
	err := r.DB.QueryRow(ctx, `
		SELECT o.id, o.user_id, o.total_cents, o.status, o.payment_status,
		       TRIM(u.first_name || ' ' || u.last_name), u.email
		FROM orders o
		JOIN users u ON u.id = o.user_id
		WHERE o.id=$1 AND o.user_id=$2`, orderID, userID).
		Scan(&po.ID, &po.UserID, &po.TotalCents, &po.Status, &po.PaymentStatus, &po.PayerName, &po.PayerEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT oi.id, oi.product_name, COALESCE(p.description, ''), oi.quantity, oi.price_cents
		FROM order_items oi
		LEFT JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id=$1`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it PaymentItem
		if err := rows.Scan(&it.ID, &it.Title, &it.Description, &it.Quantity, &it.PriceCents); err != nil {
			return nil, err
		}
		po.Items = append(po.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &po, nil
}

// StatusPair is what the cached status endpoint serves.
type StatusPair struct {
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}

func (r *Repo) GetStatus(ctx context.Context, orderID, userID string) (StatusPair, error) {
	var sp StatusPair
	err := r.DB.QueryRow(ctx, `SELECT status, payment_status FROM orders WHERE id=$1 AND user_id=$2`,
		orderID, userID).Scan(&sp.Status, &sp.PaymentStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sp, ErrOrderNotFound
		}
		return sp, err
	}
	return sp, nil
}
