package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

// CreateFromCart freezes the user's cart into a pending order inside one
// transaction. Prices come from the products table at this moment, not from
// when the items were added to the cart. Stock is not decremented and the
// cart is not cleared here; both happen only when the payment is confirmed,
// so an abandoned checkout neither holds inventory nor loses the cart.
func (r *Repo) CreateFromCart(ctx context.Context, userID string, addr ShippingAddress) (*Order, error) {
	if err := addr.Validate(); err != nil {
		return nil, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT ci.product_id, ci.quantity, p.name, p.price_cents, p.stock, p.is_active
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at`, userID)
	if err != nil {
		return nil, err
	}
	var lines []CartLine
	for rows.Next() {
		var l CartLine
		if err := rows.Scan(&l.ProductID, &l.Quantity, &l.ProductName, &l.PriceCents, &l.Stock, &l.Active); err != nil {
			rows.Close()
			return nil, err
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := ValidateLines(lines); err != nil {
		return nil, err
	}
	total := Total(lines)

	now := time.Now().UTC()
	order := &Order{
		ID:            uuid.NewString(),
		UserID:        userID,
		TotalCents:    total,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		Shipping:      addr,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (
			id, user_id, total_cents, status, payment_status,
			shipping_first_name, shipping_last_name, shipping_country,
			shipping_address, shipping_address2, shipping_city,
			shipping_state, shipping_zip, shipping_phone,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$15)`,
		order.ID, order.UserID, order.TotalCents, order.Status, order.PaymentStatus,
		addr.FirstName, addr.LastName, addr.Country,
		addr.Address, addr.Address2, addr.City,
		addr.State, addr.Zip, addr.Phone,
		now,
	)
	if err != nil {
		return nil, err
	}

	for _, l := range lines {
		item := Item{
			ID:            uuid.NewString(),
			ProductID:     l.ProductID,
			ProductName:   l.ProductName,
			Quantity:      l.Quantity,
			PriceCents:    l.PriceCents,
			SubtotalCents: l.PriceCents * int64(l.Quantity),
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, quantity, price_cents, subtotal_cents)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			item.ID, order.ID, item.ProductID, item.ProductName, item.Quantity, item.PriceCents, item.SubtotalCents,
		)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return order, nil
}

const orderColumns = `
	id, user_id, total_cents, status, payment_status, COALESCE(payment_id, ''),
	shipping_first_name, shipping_last_name, shipping_country,
	shipping_address, COALESCE(shipping_address2, ''), shipping_city,
	shipping_state, shipping_zip, COALESCE(shipping_phone, ''),
	created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.TotalCents, &o.Status, &o.PaymentStatus, &o.PaymentID,
		&o.Shipping.FirstName, &o.Shipping.LastName, &o.Shipping.Country,
		&o.Shipping.Address, &o.Shipping.Address2, &o.Shipping.City,
		&o.Shipping.State, &o.Shipping.Zip, &o.Shipping.Phone,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *Repo) loadItems(ctx context.Context, o *Order) error {
	rows, err := r.DB.Query(ctx, `
		SELECT id, product_id, product_name, quantity, price_cents, subtotal_cents
		FROM order_items WHERE order_id = $1`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.ProductID, &it.ProductName, &it.Quantity, &it.PriceCents, &it.SubtotalCents); err != nil {
			return err
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

// GetForUser returns the order with items, scoped to the owning user.
func (r *Repo) GetForUser(ctx context.Context, orderID, userID string) (*Order, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 AND user_id=$2`, orderID, userID)
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// GetAny is the admin view, unrestricted by owner.
func (r *Repo) GetAny(ctx context.Context, orderID string) (*Order, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, orderID)
	o, err := scanOrder(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repo) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := map[string]*Order{}
	var ids []string
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Order{}, nil
	}

	itemRows, err := r.DB.Query(ctx, `
		SELECT order_id, id, product_id, product_name, quantity, price_cents, subtotal_cents
		FROM order_items WHERE order_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var orderID string
		var it Item
		if err := itemRows.Scan(&orderID, &it.ID, &it.ProductID, &it.ProductName, &it.Quantity, &it.PriceCents, &it.SubtotalCents); err != nil {
			return nil, err
		}
		byID[orderID].Items = append(byID[orderID].Items, it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	out := make([]Order, 0, len(ids))
	for _, id := range ids {
		out = append(out, *byID[id])
	}
	return out, nil
}

func (r *Repo) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (r *Repo) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

// UpdateStatus applies an admin fulfillment transition. paid is rejected
// here; only payment reconciliation sets it.
func (r *Repo) UpdateStatus(ctx context.Context, orderID string, to Status) (*Order, error) {
	if !ValidStatus(to) || to == StatusPaid {
		return nil, ErrInvalidStatus
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var from Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, orderID).Scan(&from)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !CanTransition(from, to) {
		return nil, ErrInvalidStatus
	}
	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2`, to, orderID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetAny(ctx, orderID)
}

// Cancel flips an unpaid order to cancelled/cancelled. The owner may cancel
// their own order; admins may cancel any.
func (r *Repo) Cancel(ctx context.Context, orderID, userID string, isAdmin bool) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var owner string
	var status Status
	var payStatus PaymentStatus
	err = tx.QueryRow(ctx, `SELECT user_id, status, payment_status FROM orders WHERE id=$1 FOR UPDATE`, orderID).
		Scan(&owner, &status, &payStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !isAdmin && owner != userID {
		return nil, ErrNotOwner
	}
	if status == StatusPaid || payStatus == PaymentApproved {
		return nil, ErrAlreadyPaid
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders SET status=$1, payment_status=$2, updated_at=NOW() WHERE id=$3`,
		StatusCancelled, PaymentCancelled, orderID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetAny(ctx, orderID)
}

// CancelStale bulk-cancels orders still pending/pending past the grace
// window. No stock or cart compensation is needed: neither was touched for a
// pending order.
func (r *Repo) CancelStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders
		SET status=$1, payment_status=$2, updated_at=NOW()
		WHERE status=$3 AND payment_status=$4 AND created_at < NOW() - make_interval(secs => $5)`,
		StatusCancelled, PaymentCancelled, StatusPending, PaymentPending, olderThan.Seconds())
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

// SetPaymentPreference stores the gateway preference id on the order so the
// webhook can cross-reference it later.
func (r *Repo) SetPaymentPreference(ctx context.Context, orderID, preferenceID string) error {
	ct, err := r.DB.Exec(ctx, `UPDATE orders SET payment_id=$1, updated_at=NOW() WHERE id=$2`, preferenceID, orderID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}
