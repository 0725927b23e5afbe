package product

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lusakatech/pharmacare-backend/internal/httpx"
	"github.com/lusakatech/pharmacare-backend/internal/modules/auth"
	"github.com/lusakatech/pharmacare-backend/internal/modules/authz"
)

// Handler exposes product catalog HTTP endpoints.
type Handler struct {
	service Service
	gate    *authz.Evaluator
}

func NewHandler(service Service, gate *authz.Evaluator) *Handler {
	return &Handler{service: service, gate: gate}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Post("/", h.createProduct)
		r.Get("/{id}", h.getProduct)
		r.Put("/{id}", h.updateProduct)
		r.Delete("/{id}", h.deleteProduct)
	})
	r.Get("/api/v1/branches/{branch_id}/products", h.listProducts)
	r.Get("/api/v1/branches/{branch_id}/low-stock", h.listLowStock)
}

// authorize gates the request against a target branch. Writes the failure
// response itself and returns false when the caller must stop.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, res authz.Resource, action authz.Action, targetBranch uuid.UUID) bool {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, nil)
		return false
	}
	if _, err := h.gate.Require(authz.Request{
		Role:         id.Role,
		Resource:     res,
		Action:       action,
		UserBranch:   id.BranchID,
		TargetBranch: targetBranch,
		IsOwnData:    true,
	}); err != nil {
		httpx.Error(w, err)
		return false
	}
	return true
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	targetBranch, _ := uuid.Parse(req.BranchID)
	if !h.authorize(w, r, authz.ResourceProduct, authz.ActionCreate, targetBranch) {
		return
	}
	p, err := h.service.CreateProduct(r.Context(), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if !h.authorize(w, r, authz.ResourceProduct, authz.ActionRead, p.BranchID) {
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if !h.authorize(w, r, authz.ResourceProduct, authz.ActionUpdate, p.BranchID) {
		return
	}
	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	updated, err := h.service.UpdateProduct(r.Context(), p.ID.String(), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if !h.authorize(w, r, authz.ResourceProduct, authz.ActionDelete, p.BranchID) {
		return
	}
	outcome, err := h.service.DeleteProduct(r.Context(), p.ID.String())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"outcome": string(outcome)})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "branch_id")
	targetBranch, _ := uuid.Parse(branchID)
	if !h.authorize(w, r, authz.ResourceProduct, authz.ActionRead, targetBranch) {
		return
	}
	activeOnly := r.URL.Query().Get("active") != "false"
	products, err := h.service.ListProducts(r.Context(), branchID, activeOnly)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) listLowStock(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "branch_id")
	targetBranch, _ := uuid.Parse(branchID)
	if !h.authorize(w, r, authz.ResourceInventory, authz.ActionRead, targetBranch) {
		return
	}
	products, err := h.service.ListLowStock(r.Context(), branchID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}
