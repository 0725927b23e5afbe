package sale

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lusakatech/pharmacare-backend/internal/apperr"
	"github.com/lusakatech/pharmacare-backend/internal/modules/customer"
	"github.com/lusakatech/pharmacare-backend/internal/modules/inventory"
	"github.com/lusakatech/pharmacare-backend/internal/modules/product"
)

// memStore is an in-memory Store with real transaction semantics: the
// whole store is locked for the duration of a transaction (serializing
// concurrent checkouts the way row locks do) and all writes are rolled
// back when the transaction function fails.
type memStore struct {
	mu sync.Mutex

	products  map[uuid.UUID]*product.Product
	customers map[uuid.UUID]*customer.Customer
	sales     map[uuid.UUID]*Sale
	items     map[uuid.UUID][]*SaleItem
	receipts  map[uuid.UUID]*Receipt
	numbers   map[string]bool
	idemKeys  map[string]uuid.UUID
	movements []*inventory.StockMovement

	// failReceiptInserts forces the next n receipt inserts to report a
	// unique violation. Not part of transactional state.
	failReceiptInserts int
}

func newMemStore() *memStore {
	return &memStore{
		products:  make(map[uuid.UUID]*product.Product),
		customers: make(map[uuid.UUID]*customer.Customer),
		sales:     make(map[uuid.UUID]*Sale),
		items:     make(map[uuid.UUID][]*SaleItem),
		receipts:  make(map[uuid.UUID]*Receipt),
		numbers:   make(map[string]bool),
		idemKeys:  make(map[string]uuid.UUID),
	}
}

type memSnapshot struct {
	products  map[uuid.UUID]*product.Product
	customers map[uuid.UUID]*customer.Customer
	sales     map[uuid.UUID]*Sale
	items     map[uuid.UUID][]*SaleItem
	receipts  map[uuid.UUID]*Receipt
	numbers   map[string]bool
	idemKeys  map[string]uuid.UUID
	movements int
}

func (m *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		products:  make(map[uuid.UUID]*product.Product, len(m.products)),
		customers: make(map[uuid.UUID]*customer.Customer, len(m.customers)),
		sales:     make(map[uuid.UUID]*Sale, len(m.sales)),
		items:     make(map[uuid.UUID][]*SaleItem, len(m.items)),
		receipts:  make(map[uuid.UUID]*Receipt, len(m.receipts)),
		numbers:   make(map[string]bool, len(m.numbers)),
		idemKeys:  make(map[string]uuid.UUID, len(m.idemKeys)),
		movements: len(m.movements),
	}
	for k, v := range m.products {
		cp := *v
		snap.products[k] = &cp
	}
	for k, v := range m.customers {
		cp := *v
		snap.customers[k] = &cp
	}
	for k, v := range m.sales {
		cp := *v
		snap.sales[k] = &cp
	}
	for k, v := range m.items {
		snap.items[k] = append([]*SaleItem(nil), v...)
	}
	for k, v := range m.receipts {
		cp := *v
		snap.receipts[k] = &cp
	}
	for k := range m.numbers {
		snap.numbers[k] = true
	}
	for k, v := range m.idemKeys {
		snap.idemKeys[k] = v
	}
	return snap
}

func (m *memStore) restore(snap memSnapshot) {
	m.products = snap.products
	m.customers = snap.customers
	m.sales = snap.sales
	m.items = snap.items
	m.receipts = snap.receipts
	m.numbers = snap.numbers
	m.idemKeys = snap.idemKeys
	m.movements = m.movements[:snap.movements]
}

func (m *memStore) WithinTx(_ context.Context, fn func(tx TxStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(&memTxStore{store: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *memStore) getSaleLocked(id uuid.UUID) (*Sale, bool) {
	s, ok := m.sales[id]
	if !ok {
		return nil, false
	}
	cp := *s
	cp.Items = append([]*SaleItem(nil), m.items[id]...)
	// Hydration orders by line number, same as the SQL store.
	sort.Slice(cp.Items, func(i, j int) bool { return cp.Items[i].LineNo < cp.Items[j].LineNo })
	if r, ok := m.receipts[id]; ok {
		rc := *r
		cp.Receipt = &rc
	}
	return &cp, true
}

func (m *memStore) GetSaleByID(_ context.Context, id string) (*Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid sale id: %s", id)
	}
	s, ok := m.getSaleLocked(sid)
	if !ok {
		return nil, apperr.NotFound("sale %s not found", id)
	}
	return s, nil
}

func (m *memStore) GetSaleByIdempotencyKey(_ context.Context, key string) (*Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sid, ok := m.idemKeys[key]
	if !ok {
		return nil, apperr.NotFound("no sale for idempotency key")
	}
	s, _ := m.getSaleLocked(sid)
	return s, nil
}

func (m *memStore) ListSalesByBranch(_ context.Context, branchID string, cashierID *uuid.UUID) ([]*Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bid, err := uuid.Parse(branchID)
	if err != nil {
		return nil, apperr.Validation("invalid branch_id: %s", branchID)
	}
	var out []*Sale
	for id, s := range m.sales {
		if s.BranchID != bid {
			continue
		}
		if cashierID != nil && s.CashierID != *cashierID {
			continue
		}
		cp, _ := m.getSaleLocked(id)
		out = append(out, cp)
	}
	return out, nil
}

type memTxStore struct{ store *memStore }

func (t *memTxStore) ProductStockForUpdate(_ context.Context, productID uuid.UUID) (int, error) {
	p, ok := t.store.products[productID]
	if !ok {
		return 0, apperr.NotFound("product %s not found", productID)
	}
	return p.Stock, nil
}

func (t *memTxStore) SetProductStock(_ context.Context, productID uuid.UUID, stock int) error {
	t.store.products[productID].Stock = stock
	return nil
}

func (t *memTxStore) InsertMovement(_ context.Context, mv *inventory.StockMovement) error {
	t.store.movements = append(t.store.movements, mv)
	return nil
}

func (t *memTxStore) GetProductForUpdate(_ context.Context, productID uuid.UUID) (*product.Product, error) {
	p, ok := t.store.products[productID]
	if !ok {
		return nil, apperr.NotFound("product %s not found", productID)
	}
	cp := *p
	return &cp, nil
}

func (t *memTxStore) InsertSale(_ context.Context, s *Sale) error {
	if s.IdempotencyKey != "" {
		if _, taken := t.store.idemKeys[s.IdempotencyKey]; taken {
			return apperr.Conflict("a sale with this idempotency key already exists")
		}
		t.store.idemKeys[s.IdempotencyKey] = s.ID
	}
	cp := *s
	cp.Items = nil
	cp.Receipt = nil
	cp.Customer = nil
	t.store.sales[s.ID] = &cp
	return nil
}

func (t *memTxStore) InsertSaleItem(_ context.Context, item *SaleItem) error {
	t.store.items[item.SaleID] = append(t.store.items[item.SaleID], item)
	return nil
}

func (t *memTxStore) InsertReceipt(_ context.Context, r *Receipt) error {
	if t.store.failReceiptInserts > 0 {
		t.store.failReceiptInserts--
		return apperr.Conflict("receipt number %s already taken", r.Number)
	}
	if t.store.numbers[r.Number] {
		return apperr.Conflict("receipt number %s already taken", r.Number)
	}
	t.store.numbers[r.Number] = true
	t.store.receipts[r.SaleID] = r
	return nil
}

func (t *memTxStore) GetSaleForUpdate(_ context.Context, saleID uuid.UUID) (*Sale, error) {
	s, ok := t.store.getSaleLocked(saleID)
	if !ok {
		return nil, apperr.NotFound("sale %s not found", saleID)
	}
	return s, nil
}

func (t *memTxStore) UpdateSaleStatus(_ context.Context, saleID uuid.UUID, status Status, paymentStatus PaymentStatus) error {
	s, ok := t.store.sales[saleID]
	if !ok {
		return apperr.NotFound("sale %s not found", saleID)
	}
	s.Status = status
	s.PaymentStatus = paymentStatus
	return nil
}

func (t *memTxStore) ApplyCustomerPurchase(_ context.Context, customerID uuid.UUID, amount float64, points int, visitedAt time.Time) (*customer.Customer, error) {
	c, ok := t.store.customers[customerID]
	if !ok {
		return nil, apperr.NotFound("customer %s not found", customerID)
	}
	c.TotalPurchases += amount
	c.LoyaltyPoints += points
	v := visitedAt
	c.LastVisit = &v
	cp := *c
	return &cp, nil
}

// Fixtures.

const (
	testTaxRate       = 0.17
	testPointsDivisor = 100
)

func newTestService(store *memStore) Service {
	return NewService(store, inventory.NewLedger(), testTaxRate, testPointsDivisor, zap.NewNop())
}

func seedProduct(store *memStore, branchID uuid.UUID, stock int, price float64) *product.Product {
	p := &product.Product{
		ID:           uuid.New(),
		BranchID:     branchID,
		Name:         "Paracetamol 500mg",
		SKU:          "PARA-500",
		SellingPrice: price,
		Stock:        stock,
		IsActive:     true,
	}
	store.products[p.ID] = p
	return p
}

func seedCustomer(store *memStore) *customer.Customer {
	c := &customer.Customer{ID: uuid.New(), Name: "Jane Banda"}
	store.customers[c.ID] = c
	return c
}

func checkoutReq(branchID uuid.UUID, p *product.Product, qty int) CheckoutRequest {
	return CheckoutRequest{
		BranchID:      branchID.String(),
		Items:         []LineItem{{ProductID: p.ID.String(), Quantity: qty, UnitPrice: p.SellingPrice}},
		PaymentMethod: "CASH",
	}
}

func TestCheckoutSuccess(t *testing.T) {
	store := newMemStore()
	branchID := uuid.New()
	cashierID := uuid.New()
	p := seedProduct(store, branchID, 10, 85)
	c := seedCustomer(store)
	svc := newTestService(store)

	req := checkoutReq(branchID, p, 2)
	req.CustomerID = c.ID.String()

	s, err := svc.Checkout(context.Background(), cashierID, req)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if s.Subtotal != 170 || s.Tax != 28.9 || s.Total != 198.9 {
		t.Errorf("totals = %.2f/%.2f/%.2f, want 170/28.9/198.9", s.Subtotal, s.Tax, s.Total)
	}
	if s.Status != StatusCompleted || s.PaymentStatus != PaymentCompleted {
		t.Errorf("status = %s/%s, want COMPLETED/COMPLETED", s.Status, s.PaymentStatus)
	}
	if len(s.Items) != 1 || s.Items[0].TotalPrice != 170 {
		t.Errorf("items = %+v, want one line totalling 170", s.Items)
	}
	if s.Receipt == nil || !strings.HasPrefix(s.Receipt.Number, "RCP-") {
		t.Errorf("receipt = %+v, want RCP- number", s.Receipt)
	}
	if store.products[p.ID].Stock != 8 {
		t.Errorf("stock = %d, want 8", store.products[p.ID].Stock)
	}
	if len(store.movements) != 1 {
		t.Fatalf("movements = %d, want 1", len(store.movements))
	}
	mv := store.movements[0]
	if mv.Type != inventory.MovementOut || mv.Quantity != 2 || mv.Balance != 8 {
		t.Errorf("movement = %+v, want OUT qty 2 balance 8", mv)
	}
	if mv.ActorID != cashierID || mv.Reference != s.ID.String() {
		t.Errorf("movement attribution = actor %s ref %s", mv.ActorID, mv.Reference)
	}
	if s.Customer == nil || s.Customer.TotalPurchases != 198.9 || s.Customer.LoyaltyPoints != 1 {
		t.Errorf("customer snapshot = %+v, want purchases 198.9 points 1", s.Customer)
	}
	if s.Customer.LastVisit == nil {
		t.Error("customer last visit not set")
	}
}

func TestCheckoutInsufficientStock(t *testing.T) {
	store := newMemStore()
	branchID := uuid.New()
	p := seedProduct(store, branchID, 1, 85)
	svc := newTestService(store)

	_, err := svc.Checkout(context.Background(), uuid.New(), checkoutReq(branchID, p, 2))
	if !apperr.Is(err, apperr.KindInsufficientStock) {
		t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
	}
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Meta["available"] != 1 {
		t.Errorf("expected available=1 in meta, got %+v", ae)
	}
	if store.products[p.ID].Stock != 1 {
		t.Errorf("stock changed to %d on failed checkout", store.products[p.ID].Stock)
	}
	if len(store.sales) != 0 || len(store.movements) != 0 || len(store.receipts) != 0 {
		t.Error("failed checkout left rows behind")
	}

	// An identical retry fails the same way with zero net movements.
	_, err = svc.Checkout(context.Background(), uuid.New(), checkoutReq(branchID, p, 2))
	if !apperr.Is(err, apperr.KindInsufficientStock) {
		t.Fatalf("expected INSUFFICIENT_STOCK on retry, got %v", err)
	}
	if store.products[p.ID].Stock != 1 || len(store.movements) != 0 {
		t.Error("retried failure moved stock")
	}
}

func TestCheckoutMultiLineAtomicity(t *testing.T) {
	store := newMemStore()
	branchID := uuid.New()
	ok := seedProduct(store, branchID, 50, 10)
	short := seedProduct(store, branchID, 1, 20)
	svc := newTestService(store)

	req := CheckoutRequest{
		BranchID: branchID.String(),
		Items: []LineItem{
			{ProductID: ok.ID.String(), Quantity: 5, UnitPrice: 10},
			{ProductID: short.ID.String(), Quantity: 3, UnitPrice: 20},
		},
		PaymentMethod: "CARD",
	}

	_, err := svc.Checkout(context.Background(), uuid.New(), req)
	if !apperr.Is(err, apperr.KindInsufficientStock) {
		t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
	}
	// The sufficient line must not be decremented when a later line fails.
	if store.products[ok.ID].Stock != 50 || store.products[short.ID].Stock != 1 {
		t.Errorf("stock = %d/%d, want untouched 50/1",
			store.products[ok.ID].Stock, store.products[short.ID].Stock)
	}
	if len(store.sales) != 0 || len(store.movements) != 0 {
		t.Error("failed checkout left rows behind")
	}
}

func TestCheckoutRejectsBadProducts(t *testing.T) {
	store := newMemStore()
	branchID := uuid.New()
	svc := newTestService(store)

	inactive := seedProduct(store, branchID, 10, 5)
	inactive.IsActive = false
	foreign := seedProduct(store, uuid.New(), 10, 5)

	tests := []struct {
		name     string
		req      CheckoutRequest
		wantKind apperr.Kind
	}{
		{
			name: "unknown product",
			req: CheckoutRequest{
				BranchID:      branchID.String(),
				Items:         []LineItem{{ProductID: uuid.New().String(), Quantity: 1, UnitPrice: 5}},
				PaymentMethod: "CASH",
			},
			wantKind: apperr.KindNotFound,
		},
		{
			name:     "inactive product",
			req:      checkoutReq(branchID, inactive, 1),
			wantKind: apperr.KindValidation,
		},
		{
			name:     "product of another branch",
			req:      checkoutReq(branchID, foreign, 1),
			wantKind: apperr.KindNotFound,
		},
		{
			name: "invalid payment method",
			req: CheckoutRequest{
				BranchID:      branchID.String(),
				Items:         []LineItem{{ProductID: foreign.ID.String(), Quantity: 1, UnitPrice: 5}},
				PaymentMethod: "BARTER",
			},
			wantKind: apperr.KindValidation,
		},
		{
			name: "invalid branch id",
			req: CheckoutRequest{
				BranchID:      "not-a-uuid",
				Items:         []LineItem{{ProductID: foreign.ID.String(), Quantity: 1, UnitPrice: 5}},
				PaymentMethod: "CASH",
			},
			wantKind: apperr.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Checkout(context.Background(), uuid.New(), tt.req)
			if !apperr.Is(err, tt.wantKind) {
				t.Fatalf("expected %s, got %v", tt.wantKind, err)
			}
		})
	}
	if len(store.movements) != 0 {
		t.Error("rejected checkouts recorded movements")
	}
}

func TestCheckoutIdempotencyReplay(t *testing.T) {
	store := newMemStore()
	branchID := uuid.New()
	p := seedProduct(store, branchID, 10, 85)
	svc := newTestService(store)

	req := checkoutReq(branchID, p, 2)
	req.IdempotencyKey = "till-7-000123"

	first, err := svc.Checkout(context.Background(), uuid.New(), req)
	if err != nil {
		t.Fatalf("first checkout failed: %v", err)
	}
	second, err := svc.Checkout(context.Background(), uuid.New(), req)
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("replay created a new sale: %s vs %s", first.ID, second.ID)
	}
	if store.products[p.ID].Stock != 8 {
		t.Errorf("stock = %d after replay, want decremented once to 8", store.products[p.ID].Stock)
	}
	if len(store.sales) != 1 {
		t.Errorf("sales = %d, want 1", len(store.sales))
	}
}

func TestCheckoutReceiptCollisionRetry(t *testing.T) {
	store := newMemStore()
	branchID := uuid.New()
	p := seedProduct(store, branchID, 10, 85)
	store.failReceiptInserts = 1
	svc := newTestService(store)

	s, err := svc.Checkout(context.Background(), uuid.New(), checkoutReq(branchID, p, 2))
	if err != nil {
		t.Fatalf("checkout failed despite retry: %v", err)
	}
	if s.Receipt == nil {
		t.Fatal("no receipt issued")
	}
	// The collided attempt must have rolled back completely.
	if store.products[p.ID].Stock != 8 {
		t.Errorf("stock = %d, want 8 (single decrement)", store.products[p.ID].Stock)
	}
	if len(store.sales) != 1 || len(store.movements) != 1 {
		t.Errorf("sales/movements = %d/%d, want 1/1", len(store.sales), len(store.movements))
	}
}

func TestCheckoutLoyaltyAccumulates(t *testing.T) {
	store := newMemStore()
	branchID := uuid.New()
	p := seedProduct(store, branchID, 100, 85)
	c := seedCustomer(store)
	svc := newTestService(store)

	for i := 0; i < 3; i++ {
		req := checkoutReq(branchID, p, 2)
		req.CustomerID = c.ID.String()
		if _, err := svc.Checkout(context.Background(), uuid.New(), req); err != nil {
			t.Fatalf("checkout %d failed: %v", i, err)
		}
	}

	got := store.customers[c.ID]
	if got.LoyaltyPoints != 3 {
		t.Errorf("points = %d, want 3 (1 per 198.9 sale)", got.LoyaltyPoints)
	}
	if got.TotalPurchases < 596.69 || got.TotalPurchases > 596.71 {
		t.Errorf("total purchases = %.2f, want 596.70", got.TotalPurchases)
	}
}

func TestConcurrentCheckoutLastUnit(t *testing.T) {
	store := newMemStore()
	branchID := uuid.New()
	p := seedProduct(store, branchID, 1, 85)
	svc := newTestService(store)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Checkout(context.Background(), uuid.New(), checkoutReq(branchID, p, 1))
		}(i)
	}
	wg.Wait()

	var successes, stockouts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case apperr.Is(err, apperr.KindInsufficientStock):
			stockouts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || stockouts != 1 {
		t.Fatalf("successes=%d stockouts=%d, want exactly one of each", successes, stockouts)
	}
	if store.products[p.ID].Stock != 0 {
		t.Errorf("stock = %d, want 0", store.products[p.ID].Stock)
	}
}

func TestRefundSale(t *testing.T) {
	store := newMemStore()
	branchID := uuid.New()
	p := seedProduct(store, branchID, 10, 85)
	svc := newTestService(store)

	s, err := svc.Checkout(context.Background(), uuid.New(), checkoutReq(branchID, p, 2))
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	manager := uuid.New()
	refunded, err := svc.RefundSale(context.Background(), s.ID.String(), manager)
	if err != nil {
		t.Fatalf("refund failed: %v", err)
	}
	if refunded.Status != StatusRefunded || refunded.PaymentStatus != PaymentRefunded {
		t.Errorf("status = %s/%s, want REFUNDED/REFUNDED", refunded.Status, refunded.PaymentStatus)
	}
	if store.products[p.ID].Stock != 10 {
		t.Errorf("stock = %d, want restored to 10", store.products[p.ID].Stock)
	}

	last := store.movements[len(store.movements)-1]
	if last.Type != inventory.MovementReturn || last.Quantity != 2 || last.ActorID != manager {
		t.Errorf("return movement = %+v, want RETURN +2 by manager", last)
	}

	// Refunding twice is a conflict, and must not restock again.
	_, err = svc.RefundSale(context.Background(), s.ID.String(), manager)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected CONFLICT on double refund, got %v", err)
	}
	if store.products[p.ID].Stock != 10 {
		t.Errorf("stock = %d after double refund, want 10", store.products[p.ID].Stock)
	}
}

func TestRefundUnknownSale(t *testing.T) {
	svc := newTestService(newMemStore())
	_, err := svc.RefundSale(context.Background(), uuid.New().String(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestCheckoutPreservesLineOrder(t *testing.T) {
	store := newMemStore()
	branchID := uuid.New()
	svc := newTestService(store)

	var products []*product.Product
	for i := 0; i < 5; i++ {
		products = append(products, seedProduct(store, branchID, 10, float64(5+i)))
	}
	// Ring the lines up in reverse of lock order so request order and
	// sorted product order cannot coincide.
	sort.Slice(products, func(i, j int) bool {
		return products[i].ID.String() > products[j].ID.String()
	})

	req := CheckoutRequest{BranchID: branchID.String(), PaymentMethod: "CASH"}
	for _, p := range products {
		req.Items = append(req.Items, LineItem{ProductID: p.ID.String(), Quantity: 1, UnitPrice: p.SellingPrice})
	}

	s, err := svc.Checkout(context.Background(), uuid.New(), req)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	check := func(items []*SaleItem, where string) {
		if len(items) != len(products) {
			t.Fatalf("%s: items = %d, want %d", where, len(items), len(products))
		}
		for i, it := range items {
			if it.LineNo != i {
				t.Errorf("%s: item %d has line_no %d", where, i, it.LineNo)
			}
			if it.ProductID != products[i].ID {
				t.Errorf("%s: item %d is product %s, want %s", where, i, it.ProductID, products[i].ID)
			}
		}
	}
	check(s.Items, "checkout result")

	// Re-hydration must come back in ring-up order too.
	got, err := svc.GetSale(context.Background(), s.ID.String())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	check(got.Items, "hydrated")
}

func TestRefundLocksInSortedProductOrder(t *testing.T) {
	store := newMemStore()
	branchID := uuid.New()
	svc := newTestService(store)

	a := seedProduct(store, branchID, 10, 10)
	b := seedProduct(store, branchID, 10, 20)

	// Request the lines in descending product order.
	first, second := a, b
	if first.ID.String() < second.ID.String() {
		first, second = second, first
	}
	req := CheckoutRequest{
		BranchID: branchID.String(),
		Items: []LineItem{
			{ProductID: first.ID.String(), Quantity: 1, UnitPrice: first.SellingPrice},
			{ProductID: second.ID.String(), Quantity: 1, UnitPrice: second.SellingPrice},
		},
		PaymentMethod: "CASH",
	}
	s, err := svc.Checkout(context.Background(), uuid.New(), req)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if _, err := svc.RefundSale(context.Background(), s.ID.String(), uuid.New()); err != nil {
		t.Fatalf("refund failed: %v", err)
	}

	// The two RETURN movements must be applied in ascending product
	// order, regardless of the order the sale's lines were rung up.
	returns := store.movements[len(store.movements)-2:]
	if returns[0].Type != inventory.MovementReturn || returns[1].Type != inventory.MovementReturn {
		t.Fatalf("last movements = %s/%s, want RETURN/RETURN", returns[0].Type, returns[1].Type)
	}
	if returns[0].ProductID.String() > returns[1].ProductID.String() {
		t.Errorf("returns applied out of order: %s before %s", returns[0].ProductID, returns[1].ProductID)
	}
}

func TestListBranchSalesCashierFilter(t *testing.T) {
	store := newMemStore()
	branchID := uuid.New()
	p := seedProduct(store, branchID, 100, 10)
	svc := newTestService(store)

	cashierA := uuid.New()
	cashierB := uuid.New()
	for _, cashier := range []uuid.UUID{cashierA, cashierA, cashierB} {
		if _, err := svc.Checkout(context.Background(), cashier, checkoutReq(branchID, p, 1)); err != nil {
			t.Fatalf("checkout failed: %v", err)
		}
	}

	all, err := svc.ListBranchSales(context.Background(), branchID.String(), nil)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all sales = %d, want 3", len(all))
	}

	own, err := svc.ListBranchSales(context.Background(), branchID.String(), &cashierA)
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if len(own) != 2 {
		t.Errorf("cashier A sales = %d, want 2", len(own))
	}
	for _, s := range own {
		if s.CashierID != cashierA {
			t.Errorf("sale %s belongs to %s, not cashier A", s.ID, s.CashierID)
		}
	}
}
