package auth

import (
	"net/http"
	"strings"

	"github.com/lusakatech/pharmacare-backend/internal/httpx"
)

// Middleware authenticates requests with a Bearer token and stores the
// resulting Identity in the request context. Requests without a valid
// token are rejected before reaching any handler.
func Middleware(svc Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				httpx.JSON(w, http.StatusUnauthorized, httpx.ErrorResponse{Error: "missing bearer token", Kind: "UNAUTHENTICATED"})
				return
			}
			id, err := svc.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				httpx.JSON(w, http.StatusUnauthorized, httpx.ErrorResponse{Error: "invalid token", Kind: "UNAUTHENTICATED"})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
