package sale

import (
	"time"

	"github.com/google/uuid"

	"github.com/lusakatech/pharmacare-backend/internal/modules/customer"
)

// PaymentMethod represents how a sale was paid.
type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "CASH"
	PaymentCard        PaymentMethod = "CARD"
	PaymentMobileMoney PaymentMethod = "MOBILE_MONEY"
	PaymentInsurance   PaymentMethod = "INSURANCE"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentMobileMoney, PaymentInsurance:
		return true
	}
	return false
}

// Status is the lifecycle state of a sale.
type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusRefunded  Status = "REFUNDED"
	StatusCancelled Status = "CANCELLED"
)

// PaymentStatus is the settlement state of a sale. Checkout settles in
// full; there is no partial-payment workflow.
type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// Sale is one checkout: header, line items, and receipt created together
// in a single transaction, never partially.
type Sale struct {
	ID             uuid.UUID     `json:"id"`
	BranchID       uuid.UUID     `json:"branch_id"`
	CashierID      uuid.UUID     `json:"cashier_id"`
	CustomerID     *uuid.UUID    `json:"customer_id,omitempty"`
	Subtotal       float64       `json:"subtotal"`
	Tax            float64       `json:"tax"`
	Discount       float64       `json:"discount"`
	Total          float64       `json:"total"`
	PaymentMethod  PaymentMethod `json:"payment_method"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	Status         Status        `json:"status"`
	IdempotencyKey string        `json:"-"`

	// Items preserve insertion order for receipt display.
	Items   []*SaleItem        `json:"items"`
	Receipt *Receipt           `json:"receipt,omitempty"`

	// Customer is a snapshot taken after loyalty accrual, present when
	// the checkout named a customer.
	Customer *customer.Customer `json:"customer,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaleItem is one line of a sale. TotalPrice is always recomputed
// server-side as Quantity × UnitPrice. LineNo is the zero-based position
// of the line in the checkout request; hydration orders by it so receipts
// display lines in the order they were rung up.
type SaleItem struct {
	ID         uuid.UUID `json:"id"`
	SaleID     uuid.UUID `json:"sale_id"`
	LineNo     int       `json:"line_no"`
	ProductID  uuid.UUID `json:"product_id"`
	Quantity   int       `json:"quantity"`
	UnitPrice  float64   `json:"unit_price"`
	TotalPrice float64   `json:"total_price"`
}

// Receipt is the customer-facing proof of purchase, one-to-one with its
// sale. Number is unique chain-wide, enforced by the storage layer.
type Receipt struct {
	ID       uuid.UUID `json:"id"`
	SaleID   uuid.UUID `json:"sale_id"`
	Number   string    `json:"number"`
	IssuedAt time.Time `json:"issued_at"`
}

// LineItem is one requested line of a checkout.
type LineItem struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// CheckoutRequest is the payload for an atomic checkout.
type CheckoutRequest struct {
	BranchID      string     `json:"branch_id"`
	CustomerID    string     `json:"customer_id,omitempty"`
	Items         []LineItem `json:"items"`
	PaymentMethod string     `json:"payment_method"`
	Discount      float64    `json:"discount,omitempty"`

	// IdempotencyKey deduplicates retries after ambiguous failures:
	// a replayed key returns the originally created sale.
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}
