package webhook

import (
	"encoding/json"
	"errors"
	"net/http"

	"aura-be/internal/logger"
	"aura-be/internal/payment"
	"aura-be/internal/utils"

	"go.uber.org/zap"
)

type hashRequest struct {
	Total       float64 `json:"total"`
	ProductInfo string  `json:"productinfo"`
	FirstName   string  `json:"firstname"`
	Email       string  `json:"email"`
	TxnID       string  `json:"txnid"`
}

// GenerateHashHandler computes the initiation hash for the browser right
// before it posts the payment form to the gateway. The salt stays on the
// server; only the resulting hash goes out.
func (h *Handler) GenerateHashHandler(w http.ResponseWriter, r *http.Request) {
	var req hashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if req.Total <= 0 || req.ProductInfo == "" || req.FirstName == "" || req.Email == "" || req.TxnID == "" {
		utils.WriteJSONError(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	hash, err := h.gateway.RequestHash(payment.PaymentRequest{
		TxnID:       req.TxnID,
		Amount:      req.Total,
		ProductInfo: req.ProductInfo,
		FirstName:   req.FirstName,
		Email:       req.Email,
	})
	if err != nil {
		if errors.Is(err, payment.ErrMissingCredentials) {
			logger.FromCtx(r.Context()).Error("merchant credentials not configured")
			utils.WriteJSONError(w, "Missing PAYU_KEY or PAYU_SALT", http.StatusInternalServerError)
			return
		}
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	logger.FromCtx(r.Context()).Info("generated payment hash", zap.String("txnid", req.TxnID))
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"hash":    hash,
	})
}
