package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/lusakatech/pharmacare-backend/internal/apperr"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL user repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateUser(ctx context.Context, user *User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, role, branch_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.Role, user.BranchID, user.IsActive)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return apperr.Conflict("email %s is already registered", user.Email)
	}
	return err
}

func (r *postgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.scan(r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, first_name, last_name, role, branch_id, is_active, created_at, updated_at
		FROM users WHERE email = $1`, email))
}

func (r *postgresRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid user id: %s", id)
	}
	return r.scan(r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, first_name, last_name, role, branch_id, is_active, created_at, updated_at
		FROM users WHERE id = $1`, uid))
}

func (r *postgresRepository) ListUsersByBranch(ctx context.Context, branchID string) ([]*User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, password_hash, first_name, last_name, role, branch_id, is_active, created_at, updated_at
		FROM users WHERE branch_id = $1 ORDER BY created_at`, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func (r *postgresRepository) scan(row rowScanner) (*User, error) {
	u := &User{}
	var branchID sql.NullString
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Role, &branchID, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	if branchID.Valid {
		bid, err := uuid.Parse(branchID.String)
		if err != nil {
			return nil, err
		}
		u.BranchID = &bid
	}
	return u, nil
}
