package inventory

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/lusakatech/pharmacare-backend/internal/apperr"
)

type postgresStore struct{ db *sql.DB }

// NewPostgresStore creates a new PostgreSQL inventory store.
func NewPostgresStore(db *sql.DB) Store { return &postgresStore{db: db} }

func (r *postgresStore) WithinTx(ctx context.Context, fn func(tx MovementStore) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Transient(err, "begin transaction")
	}
	defer tx.Rollback()

	if err := fn(&txMovementStore{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperr.Transient(err, "commit transaction")
	}
	return nil
}

func (r *postgresStore) ListMovementsByProduct(ctx context.Context, productID string) ([]*StockMovement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, type, quantity, balance, reason, reference, actor_id, created_at
		FROM stock_movements WHERE product_id = $1 ORDER BY created_at DESC`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []*StockMovement
	for rows.Next() {
		m := &StockMovement{}
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Type, &m.Quantity, &m.Balance,
			&m.Reason, &m.Reference, &m.ActorID, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// txMovementStore implements MovementStore over an open transaction.
type txMovementStore struct{ tx *sql.Tx }

// NewTxMovementStore wraps an already-open transaction as a MovementStore,
// so another module's transaction can route its stock changes through the
// ledger and commit them atomically with its own writes.
func NewTxMovementStore(tx *sql.Tx) MovementStore { return &txMovementStore{tx: tx} }

func (s *txMovementStore) ProductStockForUpdate(ctx context.Context, productID uuid.UUID) (int, error) {
	var stock int
	err := s.tx.QueryRowContext(ctx,
		`SELECT stock FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&stock)
	if err == sql.ErrNoRows {
		return 0, apperr.NotFound("product %s not found", productID)
	}
	if err != nil {
		return 0, err
	}
	return stock, nil
}

func (s *txMovementStore) SetProductStock(ctx context.Context, productID uuid.UUID, stock int) error {
	_, err := s.tx.ExecContext(ctx,
		`UPDATE products SET stock = $1, updated_at = $2 WHERE id = $3`, stock, time.Now(), productID)
	return err
}

func (s *txMovementStore) InsertMovement(ctx context.Context, m *StockMovement) error {
	_, err := s.tx.ExecContext(ctx, `
		INSERT INTO stock_movements (id, product_id, type, quantity, balance, reason, reference, actor_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		m.ID, m.ProductID, m.Type, m.Quantity, m.Balance, m.Reason, m.Reference, m.ActorID)
	return err
}
