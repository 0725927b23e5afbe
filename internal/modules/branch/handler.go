package branch

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lusakatech/pharmacare-backend/internal/httpx"
	"github.com/lusakatech/pharmacare-backend/internal/modules/auth"
	"github.com/lusakatech/pharmacare-backend/internal/modules/authz"
)

// Handler exposes branch HTTP endpoints.
type Handler struct {
	service Service
	gate    *authz.Evaluator
}

func NewHandler(service Service, gate *authz.Evaluator) *Handler {
	return &Handler{service: service, gate: gate}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/branches", func(r chi.Router) {
		r.Post("/", h.createBranch)
		r.Get("/", h.listBranches)
		r.Get("/{id}", h.getBranch)
	})
}

// authorize gates the request and writes the failure response itself.
// Returns false when the caller must stop.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, action authz.Action) bool {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, nil)
		return false
	}
	if _, err := h.gate.Require(authz.Request{
		Role:       id.Role,
		Resource:   authz.ResourceBranch,
		Action:     action,
		UserBranch: id.BranchID,
		IsOwnData:  true,
	}); err != nil {
		httpx.Error(w, err)
		return false
	}
	return true
}

func (h *Handler) createBranch(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, authz.ActionCreate) {
		return
	}
	var req CreateBranchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}
	b, err := h.service.CreateBranch(r.Context(), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, b)
}

func (h *Handler) getBranch(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, authz.ActionRead) {
		return
	}
	b, err := h.service.GetBranch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) listBranches(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, authz.ActionRead) {
		return
	}
	branches, err := h.service.ListBranches(r.Context())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, branches)
}
