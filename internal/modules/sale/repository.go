package sale

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/lusakatech/pharmacare-backend/internal/modules/customer"
	"github.com/lusakatech/pharmacare-backend/internal/modules/inventory"
	"github.com/lusakatech/pharmacare-backend/internal/modules/product"
)

// Store defines sale data storage. WithinTx runs fn inside one database
// transaction; every write fn performs becomes visible atomically at
// commit or not at all.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx TxStore) error) error

	// GetSaleByID returns the sale hydrated with items and receipt.
	GetSaleByID(ctx context.Context, id string) (*Sale, error)

	// GetSaleByIdempotencyKey returns the sale a previous checkout
	// created under the key, or NotFound.
	GetSaleByIdempotencyKey(ctx context.Context, key string) (*Sale, error)

	ListSalesByBranch(ctx context.Context, branchID string, cashierID *uuid.UUID) ([]*Sale, error)
}

// TxStore is the transactional surface the checkout engine works against.
// It embeds inventory.MovementStore so the engine can route every stock
// change through the inventory ledger inside the same transaction.
type TxStore interface {
	inventory.MovementStore

	// GetProductForUpdate returns the product under a row lock held
	// until the transaction ends. Two concurrent checkouts touching the
	// same product serialize here.
	GetProductForUpdate(ctx context.Context, productID uuid.UUID) (*product.Product, error)

	// InsertSale persists the sale header. Returns Conflict when the
	// idempotency key is already taken.
	InsertSale(ctx context.Context, s *Sale) error

	InsertSaleItem(ctx context.Context, item *SaleItem) error

	// InsertReceipt persists the receipt. Returns Conflict when the
	// receipt number is already taken.
	InsertReceipt(ctx context.Context, r *Receipt) error

	// GetSaleForUpdate returns the sale with items under a row lock,
	// for refund processing.
	GetSaleForUpdate(ctx context.Context, saleID uuid.UUID) (*Sale, error)

	UpdateSaleStatus(ctx context.Context, saleID uuid.UUID, status Status, paymentStatus PaymentStatus) error

	// ApplyCustomerPurchase accrues a completed sale onto the customer:
	// total purchases, loyalty points, last visit.
	ApplyCustomerPurchase(ctx context.Context, customerID uuid.UUID, amount float64, points int, visitedAt time.Time) (*customer.Customer, error)
}
