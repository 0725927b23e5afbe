package product

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lusakatech/pharmacare-backend/internal/apperr"
)

// Service defines product catalog business logic.
type Service interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context, branchID string, activeOnly bool) ([]*Product, error)
	UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*Product, error)

	// DeleteProduct applies the two-variant deletion policy: products
	// referenced by sales are deactivated, unreferenced ones are purged.
	DeleteProduct(ctx context.Context, id string) (DeletionOutcome, error)

	ListLowStock(ctx context.Context, branchID string) ([]*Product, error)
}

type service struct {
	repo Repository
	log  *zap.Logger
}

// NewService creates a new product service.
func NewService(repo Repository, log *zap.Logger) Service {
	return &service{repo: repo, log: log}
}

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return nil, apperr.Validation("invalid branch_id: %s", req.BranchID)
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.Validation("name is required")
	}
	if strings.TrimSpace(req.SKU) == "" {
		return nil, apperr.Validation("sku is required")
	}
	if req.CostPrice <= 0 {
		return nil, apperr.Validation("cost_price must be positive")
	}
	if req.SellingPrice <= 0 {
		return nil, apperr.Validation("selling_price must be positive")
	}
	if req.InitialStock < 0 {
		return nil, apperr.Validation("initial_stock must not be negative")
	}
	if req.MinStock < 0 {
		return nil, apperr.Validation("min_stock must not be negative")
	}

	p := &Product{
		ID:           uuid.New(),
		BranchID:     branchID,
		Name:         req.Name,
		SKU:          strings.ToUpper(strings.TrimSpace(req.SKU)),
		Category:     req.Category,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		Stock:        req.InitialStock,
		MinStock:     req.MinStock,
		IsActive:     true,
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("product created",
		zap.String("product_id", p.ID.String()),
		zap.String("branch_id", p.BranchID.String()),
		zap.String("sku", p.SKU))
	return p, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	return s.repo.GetProductByID(ctx, id)
}

func (s *service) ListProducts(ctx context.Context, branchID string, activeOnly bool) ([]*Product, error) {
	if _, err := uuid.Parse(branchID); err != nil {
		return nil, apperr.Validation("invalid branch_id: %s", branchID)
	}
	return s.repo.ListProductsByBranch(ctx, branchID, activeOnly)
}

func (s *service) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*Product, error) {
	p, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperr.Validation("name must not be empty")
		}
		p.Name = *req.Name
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.CostPrice != nil {
		if *req.CostPrice <= 0 {
			return nil, apperr.Validation("cost_price must be positive")
		}
		p.CostPrice = *req.CostPrice
	}
	if req.SellingPrice != nil {
		if *req.SellingPrice <= 0 {
			return nil, apperr.Validation("selling_price must be positive")
		}
		p.SellingPrice = *req.SellingPrice
	}
	if req.MinStock != nil {
		if *req.MinStock < 0 {
			return nil, apperr.Validation("min_stock must not be negative")
		}
		p.MinStock = *req.MinStock
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, id string) (DeletionOutcome, error) {
	if _, err := s.repo.GetProductByID(ctx, id); err != nil {
		return "", err
	}

	referenced, err := s.repo.IsReferencedBySales(ctx, id)
	if err != nil {
		return "", err
	}
	// A movement history must survive the product too: the ledger is
	// append-only, so a product with recorded movements is deactivated,
	// never purged.
	if !referenced {
		referenced, err = s.repo.HasMovements(ctx, id)
		if err != nil {
			return "", err
		}
	}
	if referenced {
		if err := s.repo.DeactivateProduct(ctx, id); err != nil {
			return "", err
		}
		s.log.Info("product deactivated (history retained)", zap.String("product_id", id))
		return OutcomeDeactivated, nil
	}

	if err := s.repo.PurgeProduct(ctx, id); err != nil {
		return "", err
	}
	s.log.Info("product purged", zap.String("product_id", id))
	return OutcomePurged, nil
}

func (s *service) ListLowStock(ctx context.Context, branchID string) ([]*Product, error) {
	if _, err := uuid.Parse(branchID); err != nil {
		return nil, apperr.Validation("invalid branch_id: %s", branchID)
	}
	return s.repo.ListLowStock(ctx, branchID)
}
