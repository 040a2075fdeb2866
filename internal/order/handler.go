package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"aura-be/internal/discount"
	"aura-be/internal/logger"
	"aura-be/internal/payment"
	"aura-be/internal/utils"

	"go.uber.org/zap"
)

type Handler struct {
	svc     Service
	gateway *payment.Gateway
}

func NewHandler(svc Service, gateway *payment.Gateway) *Handler {
	return &Handler{svc: svc, gateway: gateway}
}

type createOrderResponse struct {
	Order   *Order                   `json:"order"`
	Payment *payment.RedirectPayload `json:"payment,omitempty"`
}

// CreateOrderHandler places the order intent and, for gateway-bound orders,
// returns the redirect payload the UI posts to PayU. Direct placements skip
// the gateway entirely.
func (h *Handler) CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input PlaceOrderInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	o, err := h.svc.PlaceOrder(ctx, input)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnauthenticated):
			utils.WriteJSONError(w, err.Error(), http.StatusUnauthorized)
		case errors.Is(err, ErrEmptyCart),
			errors.Is(err, ErrInvalidQuantity),
			errors.Is(err, discount.ErrInvalidCode),
			errors.Is(err, discount.ErrDiscountNotFound):
			utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			utils.WriteJSONError(w, "failed to place order", http.StatusInternalServerError)
		}
		return
	}

	resp := createOrderResponse{Order: o}

	if o.Status == StatusPendingPayment {
		names := make([]string, 0, len(o.Items))
		for _, item := range o.Items {
			names = append(names, item.Name)
		}

		// Tokens without a name claim still need a non-empty firstname
		// for the gateway hash; the email local-part stands in.
		firstName := utils.FirstName(utils.GetUserNameFromContext(ctx))
		if firstName == "" {
			firstName, _, _ = strings.Cut(o.UserEmail, "@")
		}

		payload, err := h.gateway.BuildRedirect(payment.PaymentRequest{
			TxnID:       o.ID,
			Amount:      o.Total,
			ProductInfo: payment.ProductInfo(names),
			FirstName:   firstName,
			Email:       o.UserEmail,
		}, o.Phone)
		if err != nil {
			// The pending order exists; the client may retry via the
			// hash endpoint once configuration is fixed.
			logger.FromCtx(ctx).Error("failed to build gateway redirect",
				zap.String("order_id", o.ID),
				zap.Error(err),
			)
			utils.WriteJSONError(w, "payment gateway unavailable", http.StatusInternalServerError)
			return
		}
		resp.Payment = payload
	}

	utils.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.GetOrders(r.Context())
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			utils.WriteJSONError(w, err.Error(), http.StatusUnauthorized)
			return
		}
		utils.WriteJSONError(w, "failed to list orders", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"orders": orders})
}

func (h *Handler) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	o, err := h.svc.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			utils.WriteJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ErrForbidden):
			utils.WriteJSONError(w, err.Error(), http.StatusForbidden)
		default:
			utils.WriteJSONError(w, "failed to load order", http.StatusInternalServerError)
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, o)
}

type updateStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// UpdateStatusHandler is the fulfillment entry point (admin only). The
// payment pipeline's transitions never go through here.
func (h *Handler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	if utils.GetUserRoleFromContext(r.Context()) != utils.RoleAdmin {
		utils.WriteJSONError(w, "admin only", http.StatusForbidden)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	err := h.svc.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			utils.WriteJSONError(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ErrInvalidStatus):
			utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			utils.WriteJSONError(w, "failed to update order", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
