package branch

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/lusakatech/pharmacare-backend/internal/apperr"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL branch repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) CreateBranch(ctx context.Context, b *Branch) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO branches (id, name, code, address, city, phone, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		b.ID, b.Name, b.Code, b.Address, b.City, b.Phone, b.IsActive)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return apperr.Conflict("branch code %s already exists", b.Code)
	}
	return err
}

func (r *postgresRepo) GetBranchByID(ctx context.Context, id string) (*Branch, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid branch id: %s", id)
	}
	b := &Branch{}
	err = r.db.QueryRowContext(ctx, `
		SELECT id, name, code, address, city, phone, is_active, created_at, updated_at
		FROM branches WHERE id = $1`, uid).
		Scan(&b.ID, &b.Name, &b.Code, &b.Address, &b.City, &b.Phone, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("branch not found")
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *postgresRepo) ListBranches(ctx context.Context) ([]*Branch, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, code, address, city, phone, is_active, created_at, updated_at
		FROM branches ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []*Branch
	for rows.Next() {
		b := &Branch{}
		if err := rows.Scan(&b.ID, &b.Name, &b.Code, &b.Address, &b.City, &b.Phone, &b.IsActive, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}
