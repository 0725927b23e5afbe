package user

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lusakatech/pharmacare-backend/internal/httpx"
	"github.com/lusakatech/pharmacare-backend/internal/identity"
	"github.com/lusakatech/pharmacare-backend/internal/modules/authz"
)

// Handler exposes user management HTTP endpoints.
type Handler struct {
	service Service
	gate    *authz.Evaluator
}

func NewHandler(service Service, gate *authz.Evaluator) *Handler {
	return &Handler{service: service, gate: gate}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Post("/", h.registerUser)
		r.Get("/{id}", h.getUser)
	})
	r.Get("/api/v1/branches/{branch_id}/users", h.listBranchUsers)
}

func (h *Handler) registerUser(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.IdentityFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, nil)
		return
	}

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return
	}

	targetBranch, _ := uuid.Parse(req.BranchID)
	if _, err := h.gate.Require(authz.Request{
		Role:         id.Role,
		Resource:     authz.ResourceUser,
		Action:       authz.ActionCreate,
		UserBranch:   id.BranchID,
		TargetBranch: targetBranch,
		IsOwnData:    true,
	}); err != nil {
		httpx.Error(w, err)
		return
	}

	u, err := h.service.RegisterUser(r.Context(), req)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, u)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.IdentityFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, nil)
		return
	}

	targetID := chi.URLParam(r, "id")
	u, err := h.service.GetUser(r.Context(), targetID)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	var targetBranch uuid.UUID
	if u.BranchID != nil {
		targetBranch = *u.BranchID
	}
	if _, err := h.gate.Require(authz.Request{
		Role:         id.Role,
		Resource:     authz.ResourceUser,
		Action:       authz.ActionRead,
		UserBranch:   id.BranchID,
		TargetBranch: targetBranch,
		IsOwnData:    u.ID == id.UserID,
	}); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

func (h *Handler) listBranchUsers(w http.ResponseWriter, r *http.Request) {
	id, ok := identity.IdentityFromContext(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, nil)
		return
	}

	branchID := chi.URLParam(r, "branch_id")
	targetBranch, _ := uuid.Parse(branchID)
	if _, err := h.gate.Require(authz.Request{
		Role:         id.Role,
		Resource:     authz.ResourceUser,
		Action:       authz.ActionRead,
		UserBranch:   id.BranchID,
		TargetBranch: targetBranch,
		IsOwnData:    true,
	}); err != nil {
		httpx.Error(w, err)
		return
	}

	users, err := h.service.ListBranchUsers(r.Context(), branchID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}
