package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/lusakatech/pharmacare-backend/internal/modules/authz"
)

// Identity is the authenticated caller: who they are, what role they hold,
// and which branch they belong to (uuid.Nil for system-level roles).
// The core trusts this identity as already authenticated.
type Identity struct {
	UserID   uuid.UUID
	Role     authz.Role
	BranchID uuid.UUID
}

type contextKey struct{}

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFromContext extracts the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
