package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lusakatech/pharmacare-backend/internal/apperr"
	"github.com/lusakatech/pharmacare-backend/internal/modules/metrics"
)

// Service defines standalone inventory operations (manual corrections,
// movement history). The checkout engine bypasses this service and drives
// the Ledger directly inside its own transaction.
type Service interface {
	ApplyMovement(ctx context.Context, actorID uuid.UUID, req ApplyMovementRequest) (*StockMovement, error)
	ListMovements(ctx context.Context, productID string) ([]*StockMovement, error)
}

type service struct {
	store  Store
	ledger *Ledger
	log    *zap.Logger
}

// NewService creates a new inventory service.
func NewService(store Store, ledger *Ledger, log *zap.Logger) Service {
	return &service{store: store, ledger: ledger, log: log}
}

func (s *service) ApplyMovement(ctx context.Context, actorID uuid.UUID, req ApplyMovementRequest) (*StockMovement, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apperr.Validation("invalid product_id: %s", req.ProductID)
	}
	mvType := MovementType(strings.ToUpper(req.Type))
	if !mvType.Valid() {
		return nil, apperr.Validation("invalid movement type: %s (allowed: IN, OUT, ADJUSTMENT, RETURN)", req.Type)
	}

	var recorded *StockMovement
	err = s.store.WithinTx(ctx, func(tx MovementStore) error {
		recorded, err = s.ledger.Apply(ctx, tx, Movement{
			ProductID: productID,
			Type:      mvType,
			Quantity:  req.Quantity,
			Reason:    req.Reason,
			Reference: req.Reference,
			ActorID:   actorID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.StockMovements.WithLabelValues(string(mvType)).Inc()
	s.log.Info("stock movement applied",
		zap.String("product_id", productID.String()),
		zap.String("type", string(mvType)),
		zap.Int("quantity", recorded.Quantity),
		zap.Int("balance", recorded.Balance))
	return recorded, nil
}

func (s *service) ListMovements(ctx context.Context, productID string) ([]*StockMovement, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return nil, apperr.Validation("invalid product id: %s", productID)
	}
	return s.store.ListMovementsByProduct(ctx, productID)
}
