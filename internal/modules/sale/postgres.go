package sale

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/lusakatech/pharmacare-backend/internal/apperr"
	"github.com/lusakatech/pharmacare-backend/internal/modules/customer"
	"github.com/lusakatech/pharmacare-backend/internal/modules/inventory"
	"github.com/lusakatech/pharmacare-backend/internal/modules/product"
)

const pqUniqueViolation = "23505"

type postgresStore struct{ db *sql.DB }

// NewPostgresStore creates a new PostgreSQL sale store.
func NewPostgresStore(db *sql.DB) Store { return &postgresStore{db: db} }

func (r *postgresStore) WithinTx(ctx context.Context, fn func(tx TxStore) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Transient(err, "begin transaction")
	}
	defer tx.Rollback()

	if err := fn(&txStore{tx: tx, MovementStore: inventory.NewTxMovementStore(tx)}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return apperr.Transient(err, "commit transaction")
	}
	return nil
}

const saleColumns = `id, branch_id, cashier_id, customer_id, subtotal, tax, discount, total,
	payment_method, payment_status, status, created_at, updated_at`

func (r *postgresStore) GetSaleByID(ctx context.Context, id string) (*Sale, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
	s, err := scanSale(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("sale %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	if err := r.hydrate(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *postgresStore) GetSaleByIdempotencyKey(ctx context.Context, key string) (*Sale, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE idempotency_key = $1`, key)
	s, err := scanSale(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("no sale for idempotency key")
	}
	if err != nil {
		return nil, err
	}
	if err := r.hydrate(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *postgresStore) ListSalesByBranch(ctx context.Context, branchID string, cashierID *uuid.UUID) ([]*Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE branch_id = $1`
	args := []any{branchID}
	if cashierID != nil {
		query += ` AND cashier_id = $2`
		args = append(args, *cashierID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []*Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, s := range sales {
		if err := r.hydrate(ctx, s); err != nil {
			return nil, err
		}
	}
	return sales, nil
}

// hydrate attaches items and receipt to a scanned sale header.
func (r *postgresStore) hydrate(ctx context.Context, s *Sale) error {
	items, err := querySaleItems(ctx, r.db, s.ID)
	if err != nil {
		return err
	}
	s.Items = items

	rc := &Receipt{}
	err = r.db.QueryRowContext(ctx,
		`SELECT id, sale_id, number, issued_at FROM receipts WHERE sale_id = $1`, s.ID).
		Scan(&rc.ID, &rc.SaleID, &rc.Number, &rc.IssuedAt)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	s.Receipt = rc
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSale(row rowScanner) (*Sale, error) {
	s := &Sale{}
	var customerID uuid.NullUUID
	err := row.Scan(&s.ID, &s.BranchID, &s.CashierID, &customerID,
		&s.Subtotal, &s.Tax, &s.Discount, &s.Total,
		&s.PaymentMethod, &s.PaymentStatus, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if customerID.Valid {
		s.CustomerID = &customerID.UUID
	}
	return s, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func querySaleItems(ctx context.Context, q querier, saleID uuid.UUID) ([]*SaleItem, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, sale_id, line_no, product_id, quantity, unit_price, total_price
		FROM sale_items WHERE sale_id = $1 ORDER BY line_no`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*SaleItem
	for rows.Next() {
		it := &SaleItem{}
		if err := rows.Scan(&it.ID, &it.SaleID, &it.LineNo, &it.ProductID, &it.Quantity,
			&it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// txStore implements TxStore over an open transaction. Stock reads and
// writes delegate to the inventory ledger's transactional store so sale
// decrements and manual movements share one code path.
type txStore struct {
	inventory.MovementStore
	tx *sql.Tx
}

func (s *txStore) GetProductForUpdate(ctx context.Context, productID uuid.UUID) (*product.Product, error) {
	p := &product.Product{}
	err := s.tx.QueryRowContext(ctx, `
		SELECT id, branch_id, name, sku, category, cost_price, selling_price,
			stock, min_stock, is_active, created_at, updated_at
		FROM products WHERE id = $1 FOR UPDATE`, productID).
		Scan(&p.ID, &p.BranchID, &p.Name, &p.SKU, &p.Category, &p.CostPrice,
			&p.SellingPrice, &p.Stock, &p.MinStock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("product %s not found", productID)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *txStore) InsertSale(ctx context.Context, sl *Sale) error {
	var idemKey sql.NullString
	if sl.IdempotencyKey != "" {
		idemKey = sql.NullString{String: sl.IdempotencyKey, Valid: true}
	}
	var customerID uuid.NullUUID
	if sl.CustomerID != nil {
		customerID = uuid.NullUUID{UUID: *sl.CustomerID, Valid: true}
	}
	_, err := s.tx.ExecContext(ctx, `
		INSERT INTO sales (id, branch_id, cashier_id, customer_id, subtotal, tax, discount,
			total, payment_method, payment_status, status, idempotency_key)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		sl.ID, sl.BranchID, sl.CashierID, customerID, sl.Subtotal, sl.Tax, sl.Discount,
		sl.Total, sl.PaymentMethod, sl.PaymentStatus, sl.Status, idemKey)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
		return apperr.Conflict("a sale with this idempotency key already exists")
	}
	return err
}

func (s *txStore) InsertSaleItem(ctx context.Context, item *SaleItem) error {
	_, err := s.tx.ExecContext(ctx, `
		INSERT INTO sale_items (id, sale_id, line_no, product_id, quantity, unit_price, total_price)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		item.ID, item.SaleID, item.LineNo, item.ProductID, item.Quantity, item.UnitPrice, item.TotalPrice)
	return err
}

func (s *txStore) InsertReceipt(ctx context.Context, rc *Receipt) error {
	_, err := s.tx.ExecContext(ctx, `
		INSERT INTO receipts (id, sale_id, number, issued_at)
		VALUES ($1,$2,$3,$4)`,
		rc.ID, rc.SaleID, rc.Number, rc.IssuedAt)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
		return apperr.Conflict("receipt number %s already taken", rc.Number)
	}
	return err
}

func (s *txStore) GetSaleForUpdate(ctx context.Context, saleID uuid.UUID) (*Sale, error) {
	row := s.tx.QueryRowContext(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, saleID)
	sl, err := scanSale(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("sale %s not found", saleID)
	}
	if err != nil {
		return nil, err
	}
	items, err := querySaleItems(ctx, s.tx, sl.ID)
	if err != nil {
		return nil, err
	}
	sl.Items = items
	return sl, nil
}

func (s *txStore) UpdateSaleStatus(ctx context.Context, saleID uuid.UUID, status Status, paymentStatus PaymentStatus) error {
	_, err := s.tx.ExecContext(ctx,
		`UPDATE sales SET status = $1, payment_status = $2, updated_at = $3 WHERE id = $4`,
		status, paymentStatus, time.Now(), saleID)
	return err
}

func (s *txStore) ApplyCustomerPurchase(ctx context.Context, customerID uuid.UUID, amount float64, points int, visitedAt time.Time) (*customer.Customer, error) {
	c := &customer.Customer{}
	var lastVisit sql.NullTime
	err := s.tx.QueryRowContext(ctx, `
		UPDATE customers
		SET total_purchases = total_purchases + $1,
			loyalty_points = loyalty_points + $2,
			last_visit = $3,
			updated_at = $3
		WHERE id = $4
		RETURNING id, name, phone, email, total_purchases, loyalty_points, last_visit, created_at, updated_at`,
		amount, points, visitedAt, customerID).
		Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.TotalPurchases, &c.LoyaltyPoints,
			&lastVisit, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("customer %s not found", customerID)
	}
	if err != nil {
		return nil, err
	}
	if lastVisit.Valid {
		c.LastVisit = &lastVisit.Time
	}
	return c, nil
}
