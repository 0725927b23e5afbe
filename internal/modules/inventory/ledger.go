package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/lusakatech/pharmacare-backend/internal/apperr"
)

// MovementStore is the slice of a transaction the ledger needs: a locked
// read of the current stock, a stock write, and an append of the movement
// row. Implementations provide it from within an open transaction so a
// movement and its stock change commit or roll back together.
type MovementStore interface {
	// ProductStockForUpdate reads the product's stock under a row lock
	// held until the enclosing transaction ends.
	ProductStockForUpdate(ctx context.Context, productID uuid.UUID) (int, error)

	SetProductStock(ctx context.Context, productID uuid.UUID, stock int) error

	InsertMovement(ctx context.Context, m *StockMovement) error
}

// Movement describes one stock change to apply.
type Movement struct {
	ProductID uuid.UUID
	Type      MovementType

	// Quantity is the amount for IN/OUT/RETURN (>= 1) or the absolute
	// target level for ADJUSTMENT (>= 0).
	Quantity int

	Reason    string
	Reference string
	ActorID   uuid.UUID
}

// Ledger applies stock movements. It owns the movement arithmetic and the
// never-negative invariant; it holds no state of its own. Both manual
// corrections and the checkout engine route every stock change through
// Apply so the audit trail stays uniform.
type Ledger struct{}

// NewLedger creates a ledger.
func NewLedger() *Ledger { return &Ledger{} }

// Apply validates the movement, updates the stock level through store,
// and appends the immutable movement row. Returns the recorded movement
// with its resulting balance.
func (l *Ledger) Apply(ctx context.Context, store MovementStore, mv Movement) (*StockMovement, error) {
	if !mv.Type.Valid() {
		return nil, apperr.Validation("invalid movement type: %s", mv.Type)
	}
	switch mv.Type {
	case MovementAdjustment:
		if mv.Quantity < 0 {
			return nil, apperr.Validation("adjustment target must not be negative")
		}
	default:
		if mv.Quantity < 1 {
			return nil, apperr.Validation("quantity must be at least 1")
		}
	}

	current, err := store.ProductStockForUpdate(ctx, mv.ProductID)
	if err != nil {
		return nil, err
	}

	var next int
	switch mv.Type {
	case MovementIn, MovementReturn:
		next = current + mv.Quantity
	case MovementOut:
		if current < mv.Quantity {
			return nil, apperr.InsufficientStock(current,
				"insufficient stock for product %s: have %d, need %d", mv.ProductID, current, mv.Quantity)
		}
		next = current - mv.Quantity
	case MovementAdjustment:
		next = mv.Quantity
	}

	if err := store.SetProductStock(ctx, mv.ProductID, next); err != nil {
		return nil, err
	}

	row := &StockMovement{
		ID:        uuid.New(),
		ProductID: mv.ProductID,
		Type:      mv.Type,
		Quantity:  mv.Quantity,
		Balance:   next,
		Reason:    mv.Reason,
		Reference: mv.Reference,
		ActorID:   mv.ActorID,
	}
	if err := store.InsertMovement(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}
