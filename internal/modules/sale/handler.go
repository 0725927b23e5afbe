package sale

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lusakatech/pharmacare-backend/internal/apperr"
	"github.com/lusakatech/pharmacare-backend/internal/httpx"
	"github.com/lusakatech/pharmacare-backend/internal/modules/auth"
	"github.com/lusakatech/pharmacare-backend/internal/modules/authz"
)

// Handler exposes sale HTTP endpoints.
type Handler struct {
	service Service
	gate    *authz.Evaluator
}

func NewHandler(service Service, gate *authz.Evaluator) *Handler {
	return &Handler{service: service, gate: gate}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/sales", func(r chi.Router) {
		r.Post("/checkout", h.checkout)
		r.Get("/{id}", h.getSale)
		r.Post("/{id}/refund", h.refundSale)
	})
	r.Get("/api/v1/branches/{branch_id}/sales", h.listSales)
}

// authorize gates the request and returns the decision so callers can act
// on its conditions (own-data scoping, approval limits). Writes the
// failure response itself and returns ok=false when the caller must stop.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, action authz.Action, targetBranch uuid.UUID, isOwnData bool) (auth.Identity, authz.Decision, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, nil)
		return auth.Identity{}, authz.Decision{}, false
	}
	decision, err := h.gate.Require(authz.Request{
		Role:         id.Role,
		Resource:     authz.ResourceSale,
		Action:       action,
		UserBranch:   id.BranchID,
		TargetBranch: targetBranch,
		IsOwnData:    isOwnData,
	})
	if err != nil {
		httpx.Error(w, err)
		return auth.Identity{}, authz.Decision{}, false
	}
	return id, decision, true
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	targetBranch, _ := uuid.Parse(req.BranchID)
	id, _, ok := h.authorize(w, r, authz.ActionCreate, targetBranch, true)
	if !ok {
		return
	}
	s, err := h.service.Checkout(r.Context(), id.UserID, req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, s)
}

// canRead reports whether the caller may read the sale. A denied read is
// surfaced as not-found so callers cannot probe which sale IDs exist in
// branches they have no access to.
func (h *Handler) canRead(id auth.Identity, s *Sale) bool {
	return h.gate.Evaluate(authz.Request{
		Role:         id.Role,
		Resource:     authz.ResourceSale,
		Action:       authz.ActionRead,
		UserBranch:   id.BranchID,
		TargetBranch: s.BranchID,
		IsOwnData:    s.CashierID == id.UserID,
	}).Allowed
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, nil)
		return
	}
	s, err := h.service.GetSale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if !h.canRead(id, s) {
		httpx.Error(w, apperr.NotFound("sale %s not found", s.ID))
		return
	}
	httpx.JSON(w, http.StatusOK, s)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	branchID := chi.URLParam(r, "branch_id")
	targetBranch, _ := uuid.Parse(branchID)
	id, decision, ok := h.authorize(w, r, authz.ActionRead, targetBranch, true)
	if !ok {
		return
	}
	// Own-data-only callers see just their own sales.
	var cashierFilter *uuid.UUID
	if decision.OwnDataOnly {
		cashierFilter = &id.UserID
	}
	sales, err := h.service.ListBranchSales(r.Context(), branchID, cashierFilter)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sales)
}

func (h *Handler) refundSale(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, nil)
		return
	}
	s, err := h.service.GetSale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	// Same existence shielding as getSale: a sale the caller cannot
	// even read refuses as not-found, not forbidden.
	if !h.canRead(caller, s) {
		httpx.Error(w, apperr.NotFound("sale %s not found", s.ID))
		return
	}
	id, decision, ok := h.authorize(w, r, authz.ActionApprove, s.BranchID, s.CashierID == caller.UserID)
	if !ok {
		return
	}
	// A numeric limit caps the sale amount this role may approve refunds
	// for; larger refunds need a role without the cap.
	if decision.NumericLimit != nil && s.Total > *decision.NumericLimit {
		httpx.Error(w, apperr.PermissionDenied(string(authz.ResourceSale), string(authz.ActionApprove)).
			WithMeta("limit", *decision.NumericLimit).
			WithMeta("amount", s.Total))
		return
	}
	refunded, err := h.service.RefundSale(r.Context(), s.ID.String(), id.UserID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, refunded)
}
