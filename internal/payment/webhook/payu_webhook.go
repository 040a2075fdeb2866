package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"aura-be/internal/logger"
	"aura-be/internal/order"
	"aura-be/internal/payment"

	"go.uber.org/zap"
)

// Handler receives the gateway's server-to-server callbacks. It never
// responds to the paying customer; the gateway invokes it asynchronously and
// retries on 5xx.
type Handler struct {
	orders   order.Service
	gateway  *payment.Gateway
	payments payment.Repository
}

func NewHandler(orders order.Service, gateway *payment.Gateway, payments payment.Repository) *Handler {
	return &Handler{
		orders:   orders,
		gateway:  gateway,
		payments: payments,
	}
}

const gatewayStatusSuccess = "success"

// PaymentWebhookHandler verifies the callback hash, then settles or cancels
// the order. Verification happens before any stock mutation; settlement runs
// in a single transaction and is idempotent, so gateway re-delivery is safe.
func (h *Handler) PaymentWebhookHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	cb := payment.CallbackParams{
		Status:      r.PostFormValue("status"),
		TxnID:       r.PostFormValue("txnid"),
		Hash:        r.PostFormValue("hash"),
		Email:       r.PostFormValue("email"),
		FirstName:   r.PostFormValue("firstname"),
		ProductInfo: r.PostFormValue("productinfo"),
		Amount:      r.PostFormValue("amount"),
	}

	log := logger.FromCtx(ctx).With(
		zap.String("txnid", cb.TxnID),
		zap.String("gateway_status", cb.Status),
	)

	if cb.Status == "" || cb.TxnID == "" || cb.Hash == "" || cb.Email == "" ||
		cb.FirstName == "" || cb.ProductInfo == "" || cb.Amount == "" {
		log.Warn("webhook missing required fields")
		http.Error(w, "Invalid request: missing fields.", http.StatusBadRequest)
		return
	}

	verifyErr := h.gateway.VerifyCallback(cb)
	callbackID := h.auditCallback(r, cb, verifyErr == nil)

	if verifyErr != nil {
		log.Error("hash mismatch, potential fraud attempt", zap.Error(verifyErr))

		// Force the order into its terminal failure state so the
		// attempt is visible in order history, not only in logs.
		note := "Payment callback failed hash verification. Treated as forged."
		if err := h.orders.CancelWithNote(ctx, cb.TxnID, note); err != nil && !errors.Is(err, order.ErrOrderNotFound) {
			log.Error("failed to cancel order after hash mismatch", zap.Error(err))
		}
		h.markFailed(ctx, callbackID, "hash verification failed")
		http.Error(w, "Hash verification failed.", http.StatusBadRequest)
		return
	}

	if cb.Status != gatewayStatusSuccess {
		note := fmt.Sprintf("Payment %s by user.", cb.Status)
		err := h.orders.CancelWithNote(ctx, cb.TxnID, note)
		if err != nil && !errors.Is(err, order.ErrOrderNotFound) {
			log.Error("failed to cancel order", zap.Error(err))
			h.markFailed(ctx, callbackID, err.Error())
			http.Error(w, "failed to update order", http.StatusInternalServerError)
			return
		}

		log.Info("order cancelled on gateway failure status")
		h.markProcessed(ctx, callbackID)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Webhook processed successfully.")
		return
	}

	if _, err := h.orders.SettlePayment(ctx, cb.TxnID); err != nil {
		// Either the order is unknown or the commit aborted after the
		// gateway captured the payment. Respond 5xx so the gateway
		// re-delivers; idempotency makes that safe.
		log.Error("settlement failed", zap.Error(err))
		h.markFailed(ctx, callbackID, err.Error())
		http.Error(w, "Error updating order status post-payment.", http.StatusInternalServerError)
		return
	}

	h.markProcessed(ctx, callbackID)
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "Webhook processed successfully.")
}

// auditCallback records the delivery. Audit failures are logged and ignored:
// the settle transaction, not the audit row, is the correctness guard.
func (h *Handler) auditCallback(r *http.Request, cb payment.CallbackParams, signatureValid bool) int64 {
	ctx := r.Context()
	payload, _ := json.Marshal(r.PostForm)

	id, duplicate, err := h.payments.SaveCallback(ctx, cb.TxnID, cb.Status, cb.Hash, signatureValid, payload)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to record webhook delivery", zap.Error(err))
		return 0
	}
	if duplicate {
		logger.FromCtx(ctx).Info("duplicate webhook delivery", zap.String("txnid", cb.TxnID))
		return 0
	}
	return id
}

func (h *Handler) markProcessed(ctx context.Context, callbackID int64) {
	if callbackID == 0 {
		return
	}
	if err := h.payments.MarkCallbackProcessed(ctx, callbackID); err != nil {
		logger.FromCtx(ctx).Error("failed to mark webhook processed", zap.Error(err))
	}
}

func (h *Handler) markFailed(ctx context.Context, callbackID int64, reason string) {
	if callbackID == 0 {
		return
	}
	if err := h.payments.MarkCallbackFailed(ctx, callbackID, reason); err != nil {
		logger.FromCtx(ctx).Error("failed to mark webhook failed", zap.Error(err))
	}
}
