package inventory

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lusakatech/pharmacare-backend/internal/httpx"
	"github.com/lusakatech/pharmacare-backend/internal/modules/auth"
	"github.com/lusakatech/pharmacare-backend/internal/modules/authz"
	"github.com/lusakatech/pharmacare-backend/internal/modules/product"
)

// Handler exposes inventory HTTP endpoints.
type Handler struct {
	service  Service
	products product.Service
	gate     *authz.Evaluator
}

func NewHandler(service Service, products product.Service, gate *authz.Evaluator) *Handler {
	return &Handler{service: service, products: products, gate: gate}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/v1/inventory/movements", h.applyMovement)
	r.Get("/api/v1/products/{id}/movements", h.listMovements)
}

func (h *Handler) applyMovement(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, nil)
		return
	}

	var req ApplyMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}

	// Target branch is the product's owning branch.
	p, err := h.products.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if _, err := h.gate.Require(authz.Request{
		Role:         id.Role,
		Resource:     authz.ResourceInventory,
		Action:       authz.ActionUpdate,
		UserBranch:   id.BranchID,
		TargetBranch: p.BranchID,
		IsOwnData:    true,
	}); err != nil {
		httpx.Error(w, err)
		return
	}

	movement, err := h.service.ApplyMovement(r.Context(), id.UserID, req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, movement)
}

func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, nil)
		return
	}

	productID := chi.URLParam(r, "id")
	p, err := h.products.GetProduct(r.Context(), productID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if _, err := h.gate.Require(authz.Request{
		Role:         id.Role,
		Resource:     authz.ResourceInventory,
		Action:       authz.ActionRead,
		UserBranch:   id.BranchID,
		TargetBranch: p.BranchID,
		IsOwnData:    true,
	}); err != nil {
		httpx.Error(w, err)
		return
	}

	movements, err := h.service.ListMovements(r.Context(), productID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, movements)
}
