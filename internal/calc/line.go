package calc

import (
	"backend/internal/apperror"

	"github.com/shopspring/decimal"
)

// DiscountType enum constants
type DiscountType string

const (
	DiscountPercent DiscountType = "PERCENT"
	DiscountAmount  DiscountType = "AMOUNT"
)

// Discount is a percentage or fixed-amount reduction.
type Discount struct {
	Type  DiscountType
	Value decimal.Decimal
}

// Options carries the calculation policy for one document.
type Options struct {
	// Precision is the currency's minor-unit count (2 for EUR, 0 for JPY).
	Precision int32
	// TaxShipping makes shipping taxable, distributed across rate buckets.
	// Shipping is tax-exempt by default.
	TaxShipping bool
	// AllowNegativePrice permits negative unit prices for credit adjustments.
	AllowNegativePrice bool
}

// DefaultOptions returns the standard two-decimal, exempt-shipping policy.
func DefaultOptions() Options {
	return Options{Precision: 2}
}

// LineInput is the priced part of one document line.
type LineInput struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	TaxRate   decimal.Decimal // percentage, 0-100
	Discount  *Discount
}

// LineAmounts is the computed money for one line. NetSubtotal is kept at full
// precision for aggregation; TaxAmount and Total are rounded to the currency's
// minor units.
type LineAmounts struct {
	RawSubtotal    decimal.Decimal
	DiscountAmount decimal.Decimal
	NetSubtotal    decimal.Decimal
	TaxRate        decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// ComputeLine derives a line's subtotal, discount, tax and total. Intermediates
// stay unrounded; only TaxAmount and Total are rounded, at the end.
func ComputeLine(in LineInput, opts Options) (LineAmounts, error) {
	if in.Quantity.LessThanOrEqual(decimal.Zero) {
		return LineAmounts{}, apperror.Validation("quantity must be positive, got %s", in.Quantity)
	}
	if in.UnitPrice.IsNegative() && !opts.AllowNegativePrice {
		return LineAmounts{}, apperror.Validation("negative unit price %s is not allowed", in.UnitPrice)
	}
	if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(hundred) {
		return LineAmounts{}, apperror.Validation("tax rate must be between 0 and 100, got %s", in.TaxRate)
	}

	raw := in.Quantity.Mul(in.UnitPrice)
	discount := applyDiscount(raw, in.Discount)
	net := raw.Sub(discount)
	tax := net.Mul(in.TaxRate).Div(hundred)

	return LineAmounts{
		RawSubtotal:    raw,
		DiscountAmount: discount,
		NetSubtotal:    net,
		TaxRate:        in.TaxRate,
		TaxAmount:      tax.Round(opts.Precision),
		Total:          net.Add(tax).Round(opts.Precision),
	}, nil
}

// applyDiscount resolves a discount against a base amount, clamped to
// [0, base] so a discount can never flip the sign of a subtotal.
func applyDiscount(base decimal.Decimal, d *Discount) decimal.Decimal {
	if d == nil || base.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	var amount decimal.Decimal
	switch d.Type {
	case DiscountPercent:
		amount = base.Mul(d.Value).Div(hundred)
	case DiscountAmount:
		amount = d.Value
	default:
		return decimal.Zero
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	if amount.GreaterThan(base) {
		return base
	}
	return amount
}
