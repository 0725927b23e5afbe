package customer

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a loyalty-tracked shopper. TotalPurchases and LoyaltyPoints
// only ever grow through checkouts; corrections are an administrative
// concern outside this service.
type Customer struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone,omitempty"`
	Email          string     `json:"email,omitempty"`
	TotalPurchases float64    `json:"total_purchases"`
	LoyaltyPoints  int        `json:"loyalty_points"`
	LastVisit      *time.Time `json:"last_visit,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CreateCustomerRequest is the payload for registering a customer.
type CreateCustomerRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}
