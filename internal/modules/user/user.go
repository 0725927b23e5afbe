package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/lusakatech/pharmacare-backend/internal/modules/authz"
)

// User is a staff member of the pharmacy chain. BranchID is nil for
// system-level roles (product owner, super admin) that operate above
// branch boundaries.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name,omitempty"`
	LastName     string     `json:"last_name,omitempty"`
	Role         authz.Role `json:"role"`
	BranchID     *uuid.UUID `json:"branch_id,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CreateUserRequest is the payload for registering a staff member.
type CreateUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	BranchID  string `json:"branch_id,omitempty"`
}
