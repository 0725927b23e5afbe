package sale

import (
	"math"

	"github.com/lusakatech/pharmacare-backend/internal/apperr"
)

// Totals is the money breakdown of a checkout.
type Totals struct {
	Subtotal float64
	Tax      float64
	Total    float64
}

// Price computes subtotal, tax, and total for a set of line items.
// Pure: no state, no I/O. Amounts are rounded to 2 decimal places.
// A discount exceeding subtotal+tax is rejected, never clamped.
func Price(items []LineItem, taxRate, discount float64) (Totals, error) {
	if len(items) == 0 {
		return Totals{}, apperr.Validation("at least one line item is required")
	}
	if taxRate < 0 {
		return Totals{}, apperr.Validation("tax rate must not be negative")
	}
	if discount < 0 {
		return Totals{}, apperr.Validation("discount must not be negative")
	}

	var subtotal float64
	for i, it := range items {
		if it.Quantity < 1 {
			return Totals{}, apperr.Validation("item %d: quantity must be at least 1", i)
		}
		if it.UnitPrice <= 0 {
			return Totals{}, apperr.Validation("item %d: unit_price must be positive", i)
		}
		subtotal += float64(it.Quantity) * it.UnitPrice
	}

	tax := subtotal * taxRate
	total := subtotal + tax - discount
	if total < 0 {
		return Totals{}, apperr.Validation("discount %.2f exceeds sale amount %.2f", discount, subtotal+tax)
	}

	return Totals{
		Subtotal: round2(subtotal),
		Tax:      round2(tax),
		Total:    round2(total),
	}, nil
}

// LoyaltyPoints converts a sale total into points by floor division.
// Fractional points always round down so customers are never over-credited.
func LoyaltyPoints(total float64, pointsDivisor int) int {
	if pointsDivisor <= 0 || total <= 0 {
		return 0
	}
	return int(math.Floor(total / float64(pointsDivisor)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
