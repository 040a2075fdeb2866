package product

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"aura-be/internal/utils"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func canManageStock(r *http.Request) bool {
	role := utils.GetUserRoleFromContext(r.Context())
	return role == utils.RoleAdmin || role == utils.RoleStoreOwner
}

type updateStockRequest struct {
	Stock int `json:"stock"`
}

// UpdateStockHandler sets an absolute stock level (owner/admin tooling).
// Responds with the product as stored so the caller sees the level that won
// any concurrent settlement decrement.
func (h *Handler) UpdateStockHandler(w http.ResponseWriter, r *http.Request) {
	if !canManageStock(r) {
		utils.WriteJSONError(w, "admin or store owner only", http.StatusForbidden)
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		utils.WriteJSONError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	var req updateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSONError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := h.repo.UpdateStock(r.Context(), id, req.Stock); err != nil {
		switch {
		case errors.Is(err, ErrNegativeStock):
			utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrProductNotFound):
			utils.WriteJSONError(w, err.Error(), http.StatusNotFound)
		default:
			utils.WriteJSONError(w, "failed to update stock", http.StatusInternalServerError)
		}
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		utils.WriteJSONError(w, "failed to load product", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, p)
}

// StockLevelsHandler returns current stock for a comma-separated id list,
// for owner/admin inventory views.
func (h *Handler) StockLevelsHandler(w http.ResponseWriter, r *http.Request) {
	if !canManageStock(r) {
		utils.WriteJSONError(w, "admin or store owner only", http.StatusForbidden)
		return
	}

	var ids []int64
	for _, raw := range strings.Split(r.URL.Query().Get("ids"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.WriteJSONError(w, "invalid product id: "+raw, http.StatusBadRequest)
			return
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		utils.WriteJSONError(w, "ids query parameter required", http.StatusBadRequest)
		return
	}

	products, err := h.repo.GetByIDs(r.Context(), ids)
	if err != nil {
		utils.WriteJSONError(w, "failed to load products", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}
