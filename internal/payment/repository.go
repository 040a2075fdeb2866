package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// Repository records every gateway delivery for audit and dedup. The
// settlement transaction is the real idempotency guard; this log is what
// operators read when reconciling.
type Repository interface {
	SaveCallback(
		ctx context.Context,
		txnid string,
		status string,
		eventID string,
		signatureValid bool,
		payload json.RawMessage,
	) (callbackID int64, isDuplicate bool, err error)

	MarkCallbackProcessed(ctx context.Context, callbackID int64) error
	MarkCallbackFailed(ctx context.Context, callbackID int64, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SaveCallback(
	ctx context.Context,
	txnid string,
	status string,
	eventID string,
	signatureValid bool,
	payload json.RawMessage,
) (int64, bool, error) {

	const q = `
	INSERT INTO payment_webhooks (
		provider,
		txnid,
		status,
		event_id,
		signature_valid,
		payload
	)
	VALUES ('PAYU', $1, $2, $3, $4, $5)
	ON CONFLICT (provider, event_id)
	DO NOTHING
	RETURNING id;
	`

	var id int64
	err := r.db.QueryRowContext(ctx, q, txnid, status, eventID, signatureValid, payload).Scan(&id)
	if err != nil {
		// Duplicate delivery already logged
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true, nil
		}
		return 0, false, err
	}

	return id, false, nil
}

func (r *repository) MarkCallbackProcessed(ctx context.Context, callbackID int64) error {
	const q = `
	UPDATE payment_webhooks
	SET processed_at = now()
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, callbackID)
	return err
}

func (r *repository) MarkCallbackFailed(ctx context.Context, callbackID int64, reason string) error {
	const q = `
	UPDATE payment_webhooks
	SET process_error = $2
	WHERE id = $1;
	`

	_, err := r.db.ExecContext(ctx, q, callbackID, reason)
	return err
}
