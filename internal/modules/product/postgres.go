package product

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/lusakatech/pharmacare-backend/internal/apperr"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL product repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const productColumns = `id, branch_id, name, sku, category, cost_price, selling_price, stock, min_stock, is_active, created_at, updated_at`

func (r *postgresRepo) CreateProduct(ctx context.Context, p *Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products
		  (id, branch_id, name, sku, category, cost_price, selling_price, stock, min_stock, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.BranchID, p.Name, p.SKU, p.Category,
		p.CostPrice, p.SellingPrice, p.Stock, p.MinStock, p.IsActive)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return apperr.Conflict("sku %s already exists at this branch", p.SKU)
	}
	return err
}

func (r *postgresRepo) GetProductByID(ctx context.Context, id string) (*Product, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid product id: %s", id)
	}
	return r.scan(r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, uid))
}

func (r *postgresRepo) ListProductsByBranch(ctx context.Context, branchID string, activeOnly bool) ([]*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE branch_id = $1`
	if activeOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *postgresRepo) UpdateProduct(ctx context.Context, p *Product) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name=$1, category=$2, cost_price=$3, selling_price=$4, min_stock=$5, is_active=$6, updated_at=$7
		WHERE id=$8`,
		p.Name, p.Category, p.CostPrice, p.SellingPrice, p.MinStock, p.IsActive, time.Now(), p.ID)
	return err
}

func (r *postgresRepo) IsReferencedBySales(ctx context.Context, id string) (bool, error) {
	var referenced bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM sale_items WHERE product_id = $1)`, id).Scan(&referenced)
	return referenced, err
}

func (r *postgresRepo) HasMovements(ctx context.Context, id string) (bool, error) {
	var present bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM stock_movements WHERE product_id = $1)`, id).Scan(&present)
	return present, err
}

func (r *postgresRepo) DeactivateProduct(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE products SET is_active = FALSE, updated_at = $1 WHERE id = $2`, time.Now(), id)
	return err
}

func (r *postgresRepo) PurgeProduct(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	return err
}

func (r *postgresRepo) ListLowStock(ctx context.Context, branchID string) ([]*Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE branch_id = $1 AND is_active AND stock <= min_stock
		ORDER BY stock`, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func (r *postgresRepo) scan(row rowScanner) (*Product, error) {
	p := &Product{}
	err := row.Scan(&p.ID, &p.BranchID, &p.Name, &p.SKU, &p.Category,
		&p.CostPrice, &p.SellingPrice, &p.Stock, &p.MinStock, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("product not found")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) collect(rows *sql.Rows) ([]*Product, error) {
	var products []*Product
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
