package product

import "context"

// Repository defines product data storage.
type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProductByID(ctx context.Context, id string) (*Product, error)
	ListProductsByBranch(ctx context.Context, branchID string, activeOnly bool) ([]*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error

	// IsReferencedBySales reports whether any sale item points at the
	// product. Drives the deletion-policy choice.
	IsReferencedBySales(ctx context.Context, id string) (bool, error)

	// HasMovements reports whether any stock movement was ever recorded
	// for the product. Movement rows are the audit trail and are never
	// deleted, so a product with history cannot be purged.
	HasMovements(ctx context.Context, id string) (bool, error)

	// DeactivateProduct soft-disables the product, keeping history intact.
	DeactivateProduct(ctx context.Context, id string) error

	// PurgeProduct hard-deletes the product row. Only valid when no sale
	// and no movement references it.
	PurgeProduct(ctx context.Context, id string) error

	// ListLowStock returns active products at or below their min stock.
	ListLowStock(ctx context.Context, branchID string) ([]*Product, error)
}
