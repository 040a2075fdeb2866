package discount

type CodeType string

const (
	TypePercentage CodeType = "percentage"
	TypeFixed      CodeType = "fixed"
)

type DiscountCode struct {
	Code  string   `json:"code"`
	Type  CodeType `json:"type"`
	Value float64  `json:"value"`
}

// RawAmount returns the undiscounted deduction for a subtotal. The caller
// clamps it to the subtotal.
func (d *DiscountCode) RawAmount(subtotal float64) float64 {
	if d == nil {
		return 0
	}
	if d.Type == TypePercentage {
		return subtotal * d.Value / 100
	}
	return d.Value
}
