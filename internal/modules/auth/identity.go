package auth

import (
	"github.com/lusakatech/pharmacare-backend/internal/identity"
)

// Identity is the authenticated caller; it lives in the leaf identity
// package so handlers can read it without importing auth.
type Identity = identity.Identity

// WithIdentity returns a context carrying the identity.
var WithIdentity = identity.WithIdentity

// IdentityFromContext extracts the authenticated identity, if any.
var IdentityFromContext = identity.IdentityFromContext
