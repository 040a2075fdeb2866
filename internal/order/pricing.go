package order

import (
	"math"

	"aura-be/internal/discount"
)

type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Taxes    float64 `json:"taxes"`
	Total    float64 `json:"total"`
}

// ComputeTotals prices a cart once, at intent time. The resulting amounts are
// persisted on the order and never recomputed; the gateway hash covers Total
// so later tampering is detectable.
//
// The discount is clamped to the subtotal, tax applies to the discounted
// amount.
func ComputeTotals(items []OrderItem, code *discount.DiscountCode, taxRate float64) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += item.Price * float64(item.Quantity)
	}

	disc := math.Min(subtotal, code.RawAmount(subtotal))
	taxes := (subtotal - disc) * taxRate

	return Totals{
		Subtotal: subtotal,
		Discount: disc,
		Taxes:    taxes,
		Total:    subtotal - disc + taxes,
	}
}
