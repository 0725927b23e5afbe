package customer

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/lusakatech/pharmacare-backend/internal/apperr"
)

// Service defines customer business logic. Loyalty balances are written
// only by the checkout engine, inside its transaction; this service never
// mutates them.
type Service interface {
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*Customer, error)
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)
}

type service struct{ repo Repository }

// NewService creates a new customer service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	c := &Customer{
		ID:    uuid.New(),
		Name:  req.Name,
		Phone: req.Phone,
		Email: strings.ToLower(req.Email),
	}
	if err := s.repo.CreateCustomer(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	return s.repo.GetCustomerByID(ctx, id)
}

func (s *service) ListCustomers(ctx context.Context) ([]*Customer, error) {
	return s.repo.ListCustomers(ctx)
}
