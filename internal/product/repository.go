package product

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*Product, error)
	UpdateStock(ctx context.Context, id int64, stock int) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Product, error) {
	const q = `
		SELECT id, store_id, name, description, price, image_urls, category, stock
		FROM products
		WHERE id = $1
	`

	var p Product
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.StoreID, &p.Name, &p.Description,
		&p.Price, pq.Array(&p.ImageURLs), &p.Category, &p.Stock,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []int64) ([]*Product, error) {
	const q = `
		SELECT id, store_id, name, description, price, image_urls, category, stock
		FROM products
		WHERE id = ANY($1)
	`

	rows, err := r.db.QueryContext(ctx, q, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID, &p.StoreID, &p.Name, &p.Description,
			&p.Price, pq.Array(&p.ImageURLs), &p.Category, &p.Stock,
		); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

// UpdateStock sets an absolute stock level. Owner and admin tooling only;
// the payment pipeline never calls this, it decrements inside its own
// transaction.
func (r *repository) UpdateStock(ctx context.Context, id int64, stock int) error {
	if stock < 0 {
		return ErrNegativeStock
	}

	res, err := r.db.ExecContext(ctx, `UPDATE products SET stock = $1 WHERE id = $2`, stock, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}
