package sale

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lusakatech/pharmacare-backend/internal/modules/auth"
	"github.com/lusakatech/pharmacare-backend/internal/modules/authz"
)

func getSaleRequest(saleID string, id auth.Identity) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/sales/"+saleID, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", saleID)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(auth.WithIdentity(ctx, id))
}

func TestGetSaleExistenceShielding(t *testing.T) {
	store := newMemStore()
	branchA := uuid.New()
	branchB := uuid.New()
	owner := uuid.New()
	p := seedProduct(store, branchA, 10, 85)
	svc := newTestService(store)
	h := NewHandler(svc, authz.NewEvaluator(authz.DefaultTable()))

	s, err := svc.Checkout(context.Background(), owner, checkoutReq(branchA, p, 1))
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	tests := []struct {
		name       string
		identity   auth.Identity
		saleID     string
		wantStatus int
	}{
		{
			name:       "cashier reads own sale",
			identity:   auth.Identity{UserID: owner, Role: authz.RoleCashier, BranchID: branchA},
			saleID:     s.ID.String(),
			wantStatus: http.StatusOK,
		},
		{
			name:       "manager of the branch reads any sale",
			identity:   auth.Identity{UserID: uuid.New(), Role: authz.RoleManager, BranchID: branchA},
			saleID:     s.ID.String(),
			wantStatus: http.StatusOK,
		},
		{
			name:       "branch-exempt role reads across branches",
			identity:   auth.Identity{UserID: uuid.New(), Role: authz.RoleSuperAdmin},
			saleID:     s.ID.String(),
			wantStatus: http.StatusOK,
		},
		// A denied read must be indistinguishable from a missing sale,
		// so cross-branch callers cannot probe which IDs exist.
		{
			name:       "manager of another branch sees not found",
			identity:   auth.Identity{UserID: uuid.New(), Role: authz.RoleManager, BranchID: branchB},
			saleID:     s.ID.String(),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "other cashier of the same branch sees not found",
			identity:   auth.Identity{UserID: uuid.New(), Role: authz.RoleCashier, BranchID: branchA},
			saleID:     s.ID.String(),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "missing sale is the same not found",
			identity:   auth.Identity{UserID: uuid.New(), Role: authz.RoleManager, BranchID: branchB},
			saleID:     uuid.New().String(),
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.getSale(w, getSaleRequest(tt.saleID, tt.identity))
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRefundShieldsUnreadableSales(t *testing.T) {
	store := newMemStore()
	branchA := uuid.New()
	branchB := uuid.New()
	p := seedProduct(store, branchA, 10, 85)
	svc := newTestService(store)
	h := NewHandler(svc, authz.NewEvaluator(authz.DefaultTable()))

	s, err := svc.Checkout(context.Background(), uuid.New(), checkoutReq(branchA, p, 1))
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	r := httptest.NewRequest(http.MethodPost, "/api/v1/sales/"+s.ID.String()+"/refund", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", s.ID.String())
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	r = r.WithContext(auth.WithIdentity(ctx, auth.Identity{
		UserID: uuid.New(), Role: authz.RoleManager, BranchID: branchB,
	}))

	w := httptest.NewRecorder()
	h.refundSale(w, r)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if got := store.sales[s.ID].Status; got != StatusCompleted {
		t.Errorf("sale status = %s, want untouched COMPLETED", got)
	}
}
