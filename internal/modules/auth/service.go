package auth

import "context"

// Service defines the interface for authentication-related business logic.
type Service interface {
	// Login verifies credentials and returns a signed session token.
	Login(ctx context.Context, email, password string) (string, error)

	// Verify parses and validates a session token into an Identity.
	Verify(token string) (Identity, error)
}
