package inventory

import (
	"time"

	"github.com/google/uuid"
)

// MovementType classifies a stock change.
type MovementType string

const (
	// MovementIn adds stock (purchases, supplier deliveries).
	MovementIn MovementType = "IN"

	// MovementOut subtracts stock (sales, wastage). Fails rather than
	// drive stock negative.
	MovementOut MovementType = "OUT"

	// MovementAdjustment sets stock to an absolute value (stock takes).
	MovementAdjustment MovementType = "ADJUSTMENT"

	// MovementReturn adds stock back like IN but stays distinguishable
	// for reporting (refunded sales).
	MovementReturn MovementType = "RETURN"
)

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjustment, MovementReturn:
		return true
	}
	return false
}

// StockMovement is one immutable ledger row. Movements are appended on
// every stock change and never edited or deleted; replaying them
// reconstructs a product's stock history.
type StockMovement struct {
	ID        uuid.UUID    `json:"id"`
	ProductID uuid.UUID    `json:"product_id"`
	Type      MovementType `json:"type"`

	// Quantity is the amount moved. Direction comes from Type (IN and
	// RETURN add, OUT subtracts); for ADJUSTMENT it is the absolute
	// level that was set.
	Quantity int `json:"quantity"`

	// Balance is the stock level after this movement. Together with
	// Quantity and Type it makes each row self-describing, so history
	// replays without reading neighbouring rows.
	Balance int `json:"balance"`

	Reason    string    `json:"reason,omitempty"`
	Reference string    `json:"reference,omitempty"`
	ActorID   uuid.UUID `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ApplyMovementRequest is the payload for a manual stock movement.
type ApplyMovementRequest struct {
	ProductID string `json:"product_id"`
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason,omitempty"`
	Reference string `json:"reference,omitempty"`
}
