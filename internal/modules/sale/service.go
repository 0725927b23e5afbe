package sale

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lusakatech/pharmacare-backend/internal/apperr"
	"github.com/lusakatech/pharmacare-backend/internal/modules/inventory"
	"github.com/lusakatech/pharmacare-backend/internal/modules/metrics"
)

// Service is the sale transaction engine.
type Service interface {
	// Checkout performs an atomic sale: stock verification, decrement,
	// pricing, loyalty accrual, and receipt issuance either all commit
	// or none do.
	Checkout(ctx context.Context, cashierID uuid.UUID, req CheckoutRequest) (*Sale, error)

	GetSale(ctx context.Context, id string) (*Sale, error)

	// ListBranchSales lists a branch's sales, optionally narrowed to one
	// cashier (own-data-only callers).
	ListBranchSales(ctx context.Context, branchID string, cashierID *uuid.UUID) ([]*Sale, error)

	// RefundSale atomically flips a completed sale to refunded and
	// returns its stock through RETURN movements.
	RefundSale(ctx context.Context, saleID string, actorID uuid.UUID) (*Sale, error)
}

type service struct {
	store         Store
	ledger        *inventory.Ledger
	taxRate       float64
	pointsDivisor int
	log           *zap.Logger
}

// NewService creates the engine. taxRate and pointsDivisor are fixed
// deployment constants, not per-sale inputs.
func NewService(store Store, ledger *inventory.Ledger, taxRate float64, pointsDivisor int, log *zap.Logger) Service {
	return &service{
		store:         store,
		ledger:        ledger,
		taxRate:       taxRate,
		pointsDivisor: pointsDivisor,
		log:           log,
	}
}

// line is a parsed, validated checkout line.
type line struct {
	productID uuid.UUID
	quantity  int
	unitPrice float64
}

func (s *service) Checkout(ctx context.Context, cashierID uuid.UUID, req CheckoutRequest) (*Sale, error) {
	branchID, err := uuid.Parse(req.BranchID)
	if err != nil {
		return nil, apperr.Validation("invalid branch_id: %s", req.BranchID)
	}
	method := PaymentMethod(strings.ToUpper(req.PaymentMethod))
	if !method.Valid() {
		return nil, apperr.Validation("invalid payment_method: %s (allowed: CASH, CARD, MOBILE_MONEY, INSURANCE)", req.PaymentMethod)
	}

	totals, err := Price(req.Items, s.taxRate, req.Discount)
	if err != nil {
		return nil, err
	}

	lines := make([]line, 0, len(req.Items))
	for _, it := range req.Items {
		pid, err := uuid.Parse(it.ProductID)
		if err != nil {
			return nil, apperr.Validation("invalid product_id: %s", it.ProductID)
		}
		lines = append(lines, line{productID: pid, quantity: it.Quantity, unitPrice: it.UnitPrice})
	}

	var customerID *uuid.UUID
	if req.CustomerID != "" {
		cid, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return nil, apperr.Validation("invalid customer_id: %s", req.CustomerID)
		}
		customerID = &cid
	}

	// A replayed idempotency key returns the sale the original attempt
	// created instead of selling twice.
	if req.IdempotencyKey != "" {
		existing, err := s.store.GetSaleByIdempotencyKey(ctx, req.IdempotencyKey)
		if err == nil {
			return existing, nil
		}
		if !apperr.Is(err, apperr.KindNotFound) {
			return nil, err
		}
	}

	// A receipt-number collision or a lost stock race surfaces as
	// Conflict; one internal retry before giving up.
	var created *Sale
	for attempt := 0; ; attempt++ {
		created, err = s.attemptCheckout(ctx, cashierID, branchID, customerID, lines, method, req.Discount, totals, req.IdempotencyKey)
		if err == nil || !apperr.Is(err, apperr.KindConflict) || attempt >= 1 {
			break
		}
		s.log.Warn("checkout conflict, retrying", zap.String("branch_id", branchID.String()), zap.Error(err))
	}

	if err != nil {
		// Losing a conflict on the idempotency key means a concurrent
		// replay already created this sale.
		if req.IdempotencyKey != "" && apperr.Is(err, apperr.KindConflict) {
			if existing, lookupErr := s.store.GetSaleByIdempotencyKey(ctx, req.IdempotencyKey); lookupErr == nil {
				return existing, nil
			}
		}
		outcome := "failed"
		if apperr.Is(err, apperr.KindValidation) || apperr.Is(err, apperr.KindInsufficientStock) || apperr.Is(err, apperr.KindNotFound) {
			outcome = "rejected"
		}
		metrics.Checkouts.WithLabelValues(outcome).Inc()
		return nil, err
	}

	metrics.Checkouts.WithLabelValues("completed").Inc()
	s.log.Info("checkout completed",
		zap.String("sale_id", created.ID.String()),
		zap.String("receipt", created.Receipt.Number),
		zap.Float64("total", created.Total),
		zap.Int("items", len(created.Items)))
	return created, nil
}

func (s *service) attemptCheckout(ctx context.Context, cashierID, branchID uuid.UUID, customerID *uuid.UUID, lines []line, method PaymentMethod, discount float64, totals Totals, idempotencyKey string) (*Sale, error) {
	now := time.Now()
	sl := &Sale{
		ID:             uuid.New(),
		BranchID:       branchID,
		CashierID:      cashierID,
		CustomerID:     customerID,
		Subtotal:       totals.Subtotal,
		Tax:            totals.Tax,
		Discount:       round2(discount),
		Total:          totals.Total,
		PaymentMethod:  method,
		PaymentStatus:  PaymentCompleted,
		Status:         StatusCompleted,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := s.store.WithinTx(ctx, func(tx TxStore) error {
		// Lock products in a stable order so two checkouts over the
		// same products cannot deadlock.
		need := make(map[uuid.UUID]int)
		for _, ln := range lines {
			need[ln.productID] += ln.quantity
		}
		order := make([]uuid.UUID, 0, len(need))
		for pid := range need {
			order = append(order, pid)
		}
		sort.Slice(order, func(i, j int) bool { return order[i].String() < order[j].String() })

		// Verify before any write: the first short item aborts the
		// whole checkout.
		for _, pid := range order {
			p, err := tx.GetProductForUpdate(ctx, pid)
			if err != nil {
				return err
			}
			if !p.IsActive {
				return apperr.Validation("product %s is inactive", p.Name)
			}
			if p.BranchID != branchID {
				return apperr.NotFound("product %s is not sold at this branch", pid)
			}
			if p.Stock < need[pid] {
				return apperr.InsufficientStock(p.Stock,
					"insufficient stock for %s: have %d, need %d", p.Name, p.Stock, need[pid])
			}
		}

		if err := tx.InsertSale(ctx, sl); err != nil {
			return err
		}

		for i, ln := range lines {
			item := &SaleItem{
				ID:         uuid.New(),
				SaleID:     sl.ID,
				LineNo:     i,
				ProductID:  ln.productID,
				Quantity:   ln.quantity,
				UnitPrice:  ln.unitPrice,
				TotalPrice: round2(float64(ln.quantity) * ln.unitPrice),
			}
			if err := tx.InsertSaleItem(ctx, item); err != nil {
				return err
			}
			sl.Items = append(sl.Items, item)

			// Every stock change goes through the ledger so the sale's
			// decrements are audited like any other movement.
			if _, err := s.ledger.Apply(ctx, tx, inventory.Movement{
				ProductID: ln.productID,
				Type:      inventory.MovementOut,
				Quantity:  ln.quantity,
				Reason:    "sale",
				Reference: sl.ID.String(),
				ActorID:   cashierID,
			}); err != nil {
				return err
			}
		}

		if customerID != nil {
			points := LoyaltyPoints(sl.Total, s.pointsDivisor)
			snapshot, err := tx.ApplyCustomerPurchase(ctx, *customerID, sl.Total, points, now)
			if err != nil {
				return err
			}
			sl.Customer = snapshot
		}

		receipt := &Receipt{
			ID:       uuid.New(),
			SaleID:   sl.ID,
			Number:   generateReceiptNumber(now),
			IssuedAt: now,
		}
		if err := tx.InsertReceipt(ctx, receipt); err != nil {
			return err
		}
		sl.Receipt = receipt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sl, nil
}

func (s *service) GetSale(ctx context.Context, id string) (*Sale, error) {
	return s.store.GetSaleByID(ctx, id)
}

func (s *service) ListBranchSales(ctx context.Context, branchID string, cashierID *uuid.UUID) ([]*Sale, error) {
	if _, err := uuid.Parse(branchID); err != nil {
		return nil, apperr.Validation("invalid branch_id: %s", branchID)
	}
	return s.store.ListSalesByBranch(ctx, branchID, cashierID)
}

func (s *service) RefundSale(ctx context.Context, saleID string, actorID uuid.UUID) (*Sale, error) {
	sid, err := uuid.Parse(saleID)
	if err != nil {
		return nil, apperr.Validation("invalid sale id: %s", saleID)
	}

	var refunded *Sale
	err = s.store.WithinTx(ctx, func(tx TxStore) error {
		sl, err := tx.GetSaleForUpdate(ctx, sid)
		if err != nil {
			return err
		}
		if sl.Status != StatusCompleted {
			return apperr.Conflict("sale is %s; only completed sales can be refunded", sl.Status)
		}

		if err := tx.UpdateSaleStatus(ctx, sid, StatusRefunded, PaymentRefunded); err != nil {
			return err
		}

		// The sale, its items, and the returned stock move together:
		// a refund is never partially applied. Locks are taken in the
		// same sorted product order as checkout so a refund and a
		// checkout over overlapping products cannot deadlock.
		returns := append([]*SaleItem(nil), sl.Items...)
		sort.Slice(returns, func(i, j int) bool {
			return returns[i].ProductID.String() < returns[j].ProductID.String()
		})
		for _, item := range returns {
			if _, err := s.ledger.Apply(ctx, tx, inventory.Movement{
				ProductID: item.ProductID,
				Type:      inventory.MovementReturn,
				Quantity:  item.Quantity,
				Reason:    "sale refund",
				Reference: sl.ID.String(),
				ActorID:   actorID,
			}); err != nil {
				return err
			}
		}

		sl.Status = StatusRefunded
		sl.PaymentStatus = PaymentRefunded
		refunded = sl
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Refunds.Inc()
	s.log.Info("sale refunded", zap.String("sale_id", saleID), zap.String("actor_id", actorID.String()))
	return refunded, nil
}
