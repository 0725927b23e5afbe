package customer

import "context"

// Repository defines customer data storage.
type Repository interface {
	CreateCustomer(ctx context.Context, c *Customer) error
	GetCustomerByID(ctx context.Context, id string) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)
}
