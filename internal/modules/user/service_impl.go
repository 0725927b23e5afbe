package user

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lusakatech/pharmacare-backend/internal/apperr"
	"github.com/lusakatech/pharmacare-backend/internal/modules/authz"
)

type service struct {
	repo Repository
}

// NewService creates a new user service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) RegisterUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	if req.Email == "" {
		return nil, apperr.Validation("email is required")
	}
	if len(req.Password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}

	role := authz.Role(strings.ToUpper(req.Role))
	if !role.Valid() {
		return nil, apperr.Validation("invalid role: %s", req.Role)
	}

	var branchID *uuid.UUID
	if req.BranchID != "" {
		bid, err := uuid.Parse(req.BranchID)
		if err != nil {
			return nil, apperr.Validation("invalid branch_id: %s", req.BranchID)
		}
		branchID = &bid
	}
	// Branch staff must belong to a branch; system-level roles must not.
	if !role.BranchExempt() && branchID == nil {
		return nil, apperr.Validation("role %s requires a branch_id", role)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           uuid.New(),
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hashedPassword),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		BranchID:     branchID,
		IsActive:     true,
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *service) ListBranchUsers(ctx context.Context, branchID string) ([]*User, error) {
	if _, err := uuid.Parse(branchID); err != nil {
		return nil, apperr.Validation("invalid branch_id: %s", branchID)
	}
	return s.repo.ListUsersByBranch(ctx, branchID)
}
