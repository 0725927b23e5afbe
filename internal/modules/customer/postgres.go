package customer

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/lusakatech/pharmacare-backend/internal/apperr"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL customer repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) CreateCustomer(ctx context.Context, c *Customer) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO customers (id, name, phone, email, total_purchases, loyalty_points)
		VALUES ($1,$2,$3,$4,0,0)`,
		c.ID, c.Name, c.Phone, c.Email)
	return err
}

func (r *postgresRepo) GetCustomerByID(ctx context.Context, id string) (*Customer, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid customer id: %s", id)
	}
	return r.scan(r.db.QueryRowContext(ctx, `
		SELECT id, name, phone, email, total_purchases, loyalty_points, last_visit, created_at, updated_at
		FROM customers WHERE id = $1`, uid))
}

func (r *postgresRepo) ListCustomers(ctx context.Context) ([]*Customer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, phone, email, total_purchases, loyalty_points, last_visit, created_at, updated_at
		FROM customers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*Customer
	for rows.Next() {
		c, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func (r *postgresRepo) scan(row rowScanner) (*Customer, error) {
	c := &Customer{}
	var lastVisit sql.NullTime
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Email,
		&c.TotalPurchases, &c.LoyaltyPoints, &lastVisit, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("customer not found")
	}
	if err != nil {
		return nil, err
	}
	if lastVisit.Valid {
		c.LastVisit = &lastVisit.Time
	}
	return c, nil
}
