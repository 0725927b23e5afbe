package product

import (
	"time"

	"github.com/google/uuid"
)

// Product is an item sold at exactly one branch. Stock is never mutated
// directly: every change goes through the inventory ledger so the movement
// history stays complete.
type Product struct {
	ID           uuid.UUID `json:"id"`
	BranchID     uuid.UUID `json:"branch_id"`
	Name         string    `json:"name"`
	SKU          string    `json:"sku"`
	Category     string    `json:"category,omitempty"`
	CostPrice    float64   `json:"cost_price"`
	SellingPrice float64   `json:"selling_price"`
	Stock        int       `json:"stock"`
	MinStock     int       `json:"min_stock"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateProductRequest is the payload for adding a product to a branch.
type CreateProductRequest struct {
	BranchID     string  `json:"branch_id"`
	Name         string  `json:"name"`
	SKU          string  `json:"sku"`
	Category     string  `json:"category,omitempty"`
	CostPrice    float64 `json:"cost_price"`
	SellingPrice float64 `json:"selling_price"`
	InitialStock int     `json:"initial_stock,omitempty"`
	MinStock     int     `json:"min_stock,omitempty"`
}

// UpdateProductRequest carries the mutable product fields. Nil pointers
// leave the stored value untouched.
type UpdateProductRequest struct {
	Name         *string  `json:"name,omitempty"`
	Category     *string  `json:"category,omitempty"`
	CostPrice    *float64 `json:"cost_price,omitempty"`
	SellingPrice *float64 `json:"selling_price,omitempty"`
	MinStock     *int     `json:"min_stock,omitempty"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

// DeletionOutcome tells the caller which of the two deletion variants ran.
type DeletionOutcome string

const (
	// OutcomeDeactivated: sales or stock movements reference the
	// product, so it was soft-disabled and its history kept.
	OutcomeDeactivated DeletionOutcome = "DEACTIVATED"

	// OutcomePurged: nothing references the product; the row was removed.
	OutcomePurged DeletionOutcome = "PURGED"
)
