package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"aura-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// SettleOutcome reports what a settle transaction actually did.
type SettleOutcome int

const (
	// Settled means stock was deducted and the order moved to Processing.
	Settled SettleOutcome = iota
	// AlreadyProcessed means a previous delivery already settled the order.
	AlreadyProcessed
	// AlreadyCancelled means the order reached a terminal failure state
	// before this delivery arrived.
	AlreadyCancelled
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByUserEmail(ctx context.Context, email string) ([]*Order, error)
	UpdateStatus(ctx context.Context, id string, status OrderStatus) error
	Cancel(ctx context.Context, id string, note string) error
	Settle(ctx context.Context, id string) (SettleOutcome, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// Create persists the order snapshot. Orders placed directly as Processing
// (no gateway involved) deduct stock in the same transaction, with the same
// guard the settle path uses.
func (r *repository) Create(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, user_email, store_id, phone,
			subtotal, discount, taxes, total,
			status, notes, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11)
	`,
		o.ID, o.UserEmail, o.StoreID, o.Phone,
		o.Subtotal, o.Discount, o.Taxes, o.Total,
		o.Status, o.Notes, now,
	)
	if err != nil {
		return err
	}

	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, name, price, image_urls, quantity
			) VALUES ($1,$2,$3,$4,$5,$6)
		`,
			o.ID, item.ProductID, item.Name, item.Price,
			pq.Array(item.ImageURLs), item.Quantity,
		)
		if err != nil {
			return err
		}
	}

	if o.Status == StatusProcessing {
		lines := make([]stockLine, 0, len(o.Items))
		for _, item := range o.Items {
			lines = append(lines, stockLine{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		if err := deductStock(ctx, tx, lines); err != nil {
			return err
		}
	}

	o.CreatedAt = now
	o.UpdatedAt = now
	return tx.Commit()
}

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	const q = `
		SELECT id, user_email, store_id, phone,
		       subtotal, discount, taxes, total,
		       status, notes, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var o Order
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&o.ID, &o.UserEmail, &o.StoreID, &o.Phone,
		&o.Subtotal, &o.Discount, &o.Taxes, &o.Total,
		&o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return &o, nil
}

func (r *repository) GetByUserEmail(ctx context.Context, email string) ([]*Order, error) {
	const q = `
		SELECT id, user_email, store_id, phone,
		       subtotal, discount, taxes, total,
		       status, notes, created_at, updated_at
		FROM orders
		WHERE user_email = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, q, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	var ids []string
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.UserEmail, &o.StoreID, &o.Phone,
			&o.Subtotal, &o.Discount, &o.Taxes, &o.Total,
			&o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, &o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Items = items[o.ID]
	}
	return orders, nil
}

func (r *repository) loadItems(ctx context.Context, orderIDs []string) (map[string][]OrderItem, error) {
	const q = `
		SELECT order_id, product_id, name, price, image_urls, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, q, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string][]OrderItem)
	for rows.Next() {
		var orderID string
		var item OrderItem
		if err := rows.Scan(
			&orderID, &item.ProductID, &item.Name, &item.Price,
			pq.Array(&item.ImageURLs), &item.Quantity,
		); err != nil {
			return nil, err
		}
		items[orderID] = append(items[orderID], item)
	}
	return items, rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, id string, status OrderStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = now() WHERE id = $2
	`, status, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// Cancel moves the order to its terminal failure state and records why. The
// note is how operators find orders needing manual reconciliation, so it must
// land on the order row, not only in logs.
//
// Only orders still awaiting payment can be cancelled here. Without the
// status predicate a forged callback carrying a known txnid could flip a
// settled order back out of Processing.
func (r *repository) Cancel(ctx context.Context, id string, note string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, notes = $2, updated_at = now() WHERE id = $3 AND status = $4
	`, StatusCancelled, note, id, StatusPendingPayment)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var status OrderStatus
		err := r.db.QueryRowContext(ctx, `
			SELECT status FROM orders WHERE id = $1
		`, id).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		// The order already left Pending Payment; cancellation no
		// longer applies and the stored status wins.
		logger.FromCtx(ctx).Warn("cancel skipped, order not awaiting payment",
			zap.String("order_id", id),
			zap.String("status", string(status)),
		)
	}
	return nil
}

// Settle commits a verified successful payment: deduct stock for every line
// item and move the order to Processing, all inside one transaction. The
// idempotency check runs on the locked order row so two concurrent deliveries
// of the same callback cannot both deduct stock.
func (r *repository) Settle(ctx context.Context, id string) (SettleOutcome, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var status OrderStatus
	err = tx.QueryRowContext(ctx, `
		SELECT status FROM orders WHERE id = $1 FOR UPDATE
	`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrOrderNotFound
	}
	if err != nil {
		return 0, err
	}

	switch status {
	case StatusProcessing:
		// Duplicate delivery; stock was already deducted.
		return AlreadyProcessed, tx.Commit()
	case StatusCancelled:
		return AlreadyCancelled, tx.Commit()
	case StatusPendingPayment:
		// fall through to the commit below
	default:
		// Shipped/Delivered are owned by fulfillment; this pipeline
		// never touches them.
		return 0, fmt.Errorf("%w: order %s is %s", ErrInvalidStatus, id, status)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT product_id, quantity FROM order_items WHERE order_id = $1
	`, id)
	if err != nil {
		return 0, err
	}

	var lines []stockLine
	for rows.Next() {
		var line stockLine
		if err := rows.Scan(&line.ProductID, &line.Quantity); err != nil {
			rows.Close()
			return 0, err
		}
		lines = append(lines, line)
	}
	if err := rows.Close(); err != nil {
		return 0, err
	}
	if len(lines) == 0 {
		return 0, fmt.Errorf("order %s has no items", id)
	}

	if err := deductStock(ctx, tx, lines); err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = now() WHERE id = $2
	`, StatusProcessing, id); err != nil {
		return 0, err
	}

	return Settled, tx.Commit()
}

type stockLine struct {
	ProductID int64
	Quantity  int
}

// deductStock locks every referenced product row, verifies each decrement
// stays non-negative, then applies all of them. Any shortfall aborts the
// caller's transaction; partial deduction must be impossible.
func deductStock(ctx context.Context, tx *sql.Tx, lines []stockLine) error {
	// Fold duplicate product references before locking.
	wanted := make(map[int64]int)
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		if _, seen := wanted[line.ProductID]; !seen {
			ids = append(ids, line.ProductID)
		}
		wanted[line.ProductID] += line.Quantity
	}

	// ORDER BY keeps the lock order consistent across concurrent
	// transactions touching overlapping products.
	rows, err := tx.QueryContext(ctx, `
		SELECT id, name, stock FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE
	`, pq.Array(ids))
	if err != nil {
		return err
	}

	type update struct {
		id       int64
		newStock int
	}
	var updates []update
	found := make(map[int64]bool)

	for rows.Next() {
		var (
			pid   int64
			name  string
			stock int
		)
		if err := rows.Scan(&pid, &name, &stock); err != nil {
			rows.Close()
			return err
		}
		found[pid] = true

		newStock := stock - wanted[pid]
		if newStock < 0 {
			rows.Close()
			return fmt.Errorf("%w for %s", ErrStockExhausted, name)
		}
		updates = append(updates, update{id: pid, newStock: newStock})
	}
	if err := rows.Close(); err != nil {
		return err
	}

	for _, pid := range ids {
		if !found[pid] {
			return fmt.Errorf("%w: product %d", ErrProductNotFound, pid)
		}
	}

	for _, u := range updates {
		if _, err := tx.ExecContext(ctx, `
			UPDATE products SET stock = $1 WHERE id = $2
		`, u.newStock, u.id); err != nil {
			return err
		}
	}
	return nil
}
