package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) List(ctx context.Context, userID string) (*View, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT ci.id, ci.quantity, ci.created_at, ci.updated_at,
		       p.id, p.name, p.price_cents, p.stock, p.is_active, COALESCE(p.image_url, ''),
		       p.price_cents * ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	v := &View{Items: []Line{}}
	for rows.Next() {
		var l Line
		err := rows.Scan(&l.ID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt,
			&l.ProductID, &l.ProductName, &l.PriceCents, &l.Stock, &l.Active, &l.ImageURL,
			&l.SubtotalCents)
		if err != nil {
			return nil, err
		}
		v.Items = append(v.Items, l)
		v.TotalCents += l.SubtotalCents
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	v.Count = len(v.Items)
	return v, nil
}

// Add puts qty of a product in the user's cart, summing with an existing
// line. Stock is validated against the resulting quantity but not reserved.
func (r *Repo) Add(ctx context.Context, userID, productID string, qty int) (*Line, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var stock int
	var active bool
	err = tx.QueryRow(ctx, `SELECT stock, is_active FROM products WHERE id=$1`, productID).Scan(&stock, &active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !active {
		return nil, ErrProductInactive
	}

	var itemID string
	var inCart int
	err = tx.QueryRow(ctx, `SELECT id, quantity FROM cart_items WHERE user_id=$1 AND product_id=$2`,
		userID, productID).Scan(&itemID, &inCart)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if stock < inCart+qty {
		return nil, &InsufficientStockError{Available: stock, InCart: inCart}
	}

	if itemID == "" {
		itemID = uuid.NewString()
		_, err = tx.Exec(ctx, `
			INSERT INTO cart_items (id, user_id, product_id, quantity) VALUES ($1,$2,$3,$4)`,
			itemID, userID, productID, qty)
	} else {
		_, err = tx.Exec(ctx, `UPDATE cart_items SET quantity=$1, updated_at=NOW() WHERE id=$2`,
			inCart+qty, itemID)
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.getLine(ctx, itemID)
}

// UpdateQuantity sets (not adds) the quantity of an owned cart line.
func (r *Repo) UpdateQuantity(ctx context.Context, userID, itemID string, qty int) (*Line, error) {
	var stock int
	var active bool
	err := r.DB.QueryRow(ctx, `
		SELECT p.stock, p.is_active
		FROM cart_items ci JOIN products p ON p.id = ci.product_id
		WHERE ci.id=$1 AND ci.user_id=$2`, itemID, userID).Scan(&stock, &active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	if !active {
		return nil, ErrProductInactive
	}
	if stock < qty {
		return nil, &InsufficientStockError{Available: stock}
	}

	_, err = r.DB.Exec(ctx, `UPDATE cart_items SET quantity=$1, updated_at=NOW() WHERE id=$2`, qty, itemID)
	if err != nil {
		return nil, err
	}
	return r.getLine(ctx, itemID)
}

func (r *Repo) Remove(ctx context.Context, userID, itemID string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM cart_items WHERE id=$1 AND user_id=$2`, itemID, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *Repo) Clear(ctx context.Context, userID string) (int64, error) {
	ct, err := r.DB.Exec(ctx, `DELETE FROM cart_items WHERE user_id=$1`, userID)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

// Merge folds a client-held guest cart into the server cart in a single
// transaction, summing quantities for products already present. Lines whose
// product is gone or inactive are skipped rather than failing the merge.
// Returns how many lines were merged.
func (r *Repo) Merge(ctx context.Context, userID string, lines []MergeLine) (int, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	merged := 0
	for _, l := range lines {
		if l.Quantity <= 0 || l.ProductID == "" {
			continue
		}
		ct, err := tx.Exec(ctx, `
			INSERT INTO cart_items (id, user_id, product_id, quantity)
			SELECT $1, $2, p.id, $4 FROM products p WHERE p.id = $3 AND p.is_active
			ON CONFLICT (user_id, product_id)
			DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()`,
			uuid.NewString(), userID, l.ProductID, l.Quantity)
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() > 0 {
			merged++
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return merged, nil
}

func (r *Repo) getLine(ctx context.Context, itemID string) (*Line, error) {
	var l Line
	err := r.DB.QueryRow(ctx, `
		SELECT ci.id, ci.quantity, ci.created_at, ci.updated_at,
		       p.id, p.name, p.price_cents, p.stock, p.is_active, COALESCE(p.image_url, ''),
		       p.price_cents * ci.quantity
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.id = $1`, itemID).
		Scan(&l.ID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt,
			&l.ProductID, &l.ProductName, &l.PriceCents, &l.Stock, &l.Active, &l.ImageURL,
			&l.SubtotalCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &l, nil
}
