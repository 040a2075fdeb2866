package discount

import (
	"context"
	"database/sql"
	"errors"
)

type Repository interface {
	GetByCode(ctx context.Context, code string) (*DiscountCode, error)
	List(ctx context.Context) ([]*DiscountCode, error)
	Create(ctx context.Context, code *DiscountCode) error
	Delete(ctx context.Context, code string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByCode(ctx context.Context, code string) (*DiscountCode, error) {
	const q = `SELECT code, type, value FROM discount_codes WHERE code = $1`

	var d DiscountCode
	err := r.db.QueryRowContext(ctx, q, code).Scan(&d.Code, &d.Type, &d.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDiscountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repository) List(ctx context.Context) ([]*DiscountCode, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT code, type, value FROM discount_codes ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []*DiscountCode
	for rows.Next() {
		var d DiscountCode
		if err := rows.Scan(&d.Code, &d.Type, &d.Value); err != nil {
			return nil, err
		}
		codes = append(codes, &d)
	}
	return codes, rows.Err()
}

func (r *repository) Create(ctx context.Context, code *DiscountCode) error {
	const q = `
		INSERT INTO discount_codes (code, type, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET type = $2, value = $3
	`
	_, err := r.db.ExecContext(ctx, q, code.Code, code.Type, code.Value)
	return err
}

func (r *repository) Delete(ctx context.Context, code string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM discount_codes WHERE code = $1`, code)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrDiscountNotFound
	}
	return nil
}
