package branch

import "context"

// Repository defines branch data storage.
type Repository interface {
	CreateBranch(ctx context.Context, b *Branch) error
	GetBranchByID(ctx context.Context, id string) (*Branch, error)
	ListBranches(ctx context.Context) ([]*Branch, error)
}
