package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

const productColumns = `id, name, COALESCE(description, ''), price_cents, stock, is_active, COALESCE(image_url, ''), created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.PriceCents, &p.Stock, &p.Active, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*Product, error) {
	return scanProduct(r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
}

func (r *Repo) List(ctx context.Context, activeOnly bool) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY name`
	if activeOnly {
		query = `SELECT ` + productColumns + ` FROM products WHERE is_active ORDER BY name`
	}
	rows, err := r.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *Repo) Create(ctx context.Context, p *Product) (*Product, error) {
	p.ID = uuid.NewString()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO products (id, name, description, price_cents, stock, is_active, image_url)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.Name, p.Description, p.PriceCents, p.Stock, p.Active, p.ImageURL)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, p.ID)
}

func (r *Repo) Update(ctx context.Context, id string, p *Product) (*Product, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products
		SET name=$1, description=$2, price_cents=$3, stock=$4, is_active=$5, image_url=$6, updated_at=NOW()
		WHERE id=$7`,
		p.Name, p.Description, p.PriceCents, p.Stock, p.Active, p.ImageURL, id)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, ErrProductNotFound
	}
	return r.Get(ctx, id)
}

// Delete decides up front whether the product is referenced by any order
// item and then either deactivates or purges it, never both.
func (r *Repo) Delete(ctx context.Context, id string) (DeleteMode, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return DeletePurged, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id=$1)`, id).Scan(&exists); err != nil {
		return DeletePurged, err
	}
	if !exists {
		return DeletePurged, ErrProductNotFound
	}

	var referenced bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM order_items WHERE product_id=$1)`, id).Scan(&referenced); err != nil {
		return DeletePurged, err
	}

	mode := DeletePurged
	if referenced {
		mode = DeleteDeactivated
		_, err = tx.Exec(ctx, `UPDATE products SET is_active=FALSE, updated_at=NOW() WHERE id=$1`, id)
	} else {
		_, err = tx.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	}
	if err != nil {
		return mode, err
	}
	return mode, tx.Commit(ctx)
}
