package inventory

import "context"

// Store defines inventory data storage. WithinTx runs fn inside one
// database transaction; the MovementStore it passes is only valid until
// fn returns.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx MovementStore) error) error

	ListMovementsByProduct(ctx context.Context, productID string) ([]*StockMovement, error)
}
