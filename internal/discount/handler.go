package discount

import (
	"encoding/json"
	"errors"
	"net/http"

	"aura-be/internal/utils"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if utils.GetUserRoleFromContext(r.Context()) != utils.RoleAdmin {
		utils.WriteJSONError(w, "admin only", http.StatusForbidden)
		return false
	}
	return true
}

func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	codes, err := h.svc.List(r.Context())
	if err != nil {
		utils.WriteJSONError(w, "failed to list discount codes", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"discounts": codes})
}

func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	var code DiscountCode
	if err := json.NewDecoder(r.Body).Decode(&code); err != nil {
		utils.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := h.svc.Create(r.Context(), &code); err != nil {
		if errors.Is(err, ErrInvalidCode) {
			utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		utils.WriteJSONError(w, "failed to create discount code", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, &code)
}

func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	if err := h.svc.Delete(r.Context(), r.PathValue("code")); err != nil {
		if errors.Is(err, ErrDiscountNotFound) {
			utils.WriteJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		utils.WriteJSONError(w, "failed to delete discount code", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
