// internal/services/pricing.go
package services

import (
	"fmt"
	"math"
)

const (
	TaxRate      = 0.08
	ShippingFlat = 9.99
)

// PriceLine is one cart line priced at its unit price.
type PriceLine struct {
	UnitPrice float64
	Quantity  int
}

// Totals are kept at full precision; use RoundMoney or FormatMoney when rendering.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Taxable  float64 `json:"taxable"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// CalculateTotals prices a cart. percentOff is nil when no coupon applies.
func CalculateTotals(lines []PriceLine, percentOff *float64) Totals {
	var t Totals
	for _, line := range lines {
		t.Subtotal += line.UnitPrice * float64(line.Quantity)
	}

	if percentOff != nil {
		t.Discount = t.Subtotal * (*percentOff / 100)
	}

	t.Taxable = math.Max(0, t.Subtotal-t.Discount)
	t.Tax = t.Taxable * TaxRate
	t.Shipping = ShippingFlat
	t.Total = t.Taxable + t.Tax + t.Shipping
	return t
}

// Rounded returns a copy with every amount rounded to cents.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal: RoundMoney(t.Subtotal),
		Discount: RoundMoney(t.Discount),
		Taxable:  RoundMoney(t.Taxable),
		Tax:      RoundMoney(t.Tax),
		Shipping: RoundMoney(t.Shipping),
		Total:    RoundMoney(t.Total),
	}
}

func RoundMoney(amount float64) float64 {
	return math.Round(amount*100) / 100
}

func FormatMoney(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

// ToCents converts a dollar amount to the integer minor units Stripe expects.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// DiscountedCents applies a percentage discount to a unit amount, never going below zero.
func DiscountedCents(cents int64, percentOff *float64) int64 {
	if percentOff == nil {
		return cents
	}
	discounted := int64(math.Round(float64(cents) * (1 - *percentOff/100)))
	if discounted < 0 {
		return 0
	}
	return discounted
}
