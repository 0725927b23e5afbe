package customer

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lusakatech/pharmacare-backend/internal/httpx"
	"github.com/lusakatech/pharmacare-backend/internal/modules/auth"
	"github.com/lusakatech/pharmacare-backend/internal/modules/authz"
)

// Handler exposes customer HTTP endpoints.
type Handler struct {
	service Service
	gate    *authz.Evaluator
}

func NewHandler(service Service, gate *authz.Evaluator) *Handler {
	return &Handler{service: service, gate: gate}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/customers", func(r chi.Router) {
		r.Post("/", h.createCustomer)
		r.Get("/", h.listCustomers)
		r.Get("/{id}", h.getCustomer)
	})
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, action authz.Action) bool {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, nil)
		return false
	}
	// Customers are chain-wide, so the caller's own branch is the target.
	if _, err := h.gate.Require(authz.Request{
		Role:         id.Role,
		Resource:     authz.ResourceCustomer,
		Action:       action,
		UserBranch:   id.BranchID,
		TargetBranch: id.BranchID,
		IsOwnData:    true,
	}); err != nil {
		httpx.Error(w, err)
		return false
	}
	return true
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, authz.ActionCreate) {
		return
	}
	var req CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	c, err := h.service.CreateCustomer(r.Context(), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, authz.ActionRead) {
		return
	}
	c, err := h.service.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, authz.ActionRead) {
		return
	}
	customers, err := h.service.ListCustomers(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customers)
}
