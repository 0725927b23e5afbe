package branch

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/lusakatech/pharmacare-backend/internal/apperr"
)

// Service defines branch business logic.
type Service interface {
	CreateBranch(ctx context.Context, req CreateBranchRequest) (*Branch, error)
	GetBranch(ctx context.Context, id string) (*Branch, error)
	ListBranches(ctx context.Context) ([]*Branch, error)
}

type service struct{ repo Repository }

// NewService creates a new branch service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateBranch(ctx context.Context, req CreateBranchRequest) (*Branch, error) {
	if req.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, apperr.Validation("code is required")
	}

	b := &Branch{
		ID:       uuid.New(),
		Name:     req.Name,
		Code:     code,
		Address:  req.Address,
		City:     req.City,
		Phone:    req.Phone,
		IsActive: true,
	}
	if err := s.repo.CreateBranch(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) GetBranch(ctx context.Context, id string) (*Branch, error) {
	return s.repo.GetBranchByID(ctx, id)
}

func (s *service) ListBranches(ctx context.Context) ([]*Branch, error) {
	return s.repo.ListBranches(ctx)
}
