package calc

import (
	"testing"

	"backend/internal/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeLine(t *testing.T) {
	tests := []struct {
		name         string
		in           LineInput
		wantNet      string
		wantDiscount string
		wantTax      string
		wantTotal    string
	}{
		{
			name:      "no discount",
			in:        LineInput{Quantity: dec("2"), UnitPrice: dec("200"), TaxRate: dec("20")},
			wantNet:   "400", wantDiscount: "0", wantTax: "80", wantTotal: "480",
		},
		{
			name: "percent discount",
			in: LineInput{
				Quantity: dec("4"), UnitPrice: dec("25"), TaxRate: dec("10"),
				Discount: &Discount{Type: DiscountPercent, Value: dec("10")},
			},
			wantNet: "90", wantDiscount: "10", wantTax: "9", wantTotal: "99",
		},
		{
			name: "amount discount",
			in: LineInput{
				Quantity: dec("1"), UnitPrice: dec("300"), TaxRate: dec("10"),
				Discount: &Discount{Type: DiscountAmount, Value: dec("50")},
			},
			wantNet: "250", wantDiscount: "50", wantTax: "25", wantTotal: "275",
		},
		{
			name: "amount discount clamped to subtotal",
			in: LineInput{
				Quantity: dec("1"), UnitPrice: dec("100"), TaxRate: dec("20"),
				Discount: &Discount{Type: DiscountAmount, Value: dec("150")},
			},
			wantNet: "0", wantDiscount: "100", wantTax: "0", wantTotal: "0",
		},
		{
			name: "negative discount value clamped to zero",
			in: LineInput{
				Quantity: dec("1"), UnitPrice: dec("100"), TaxRate: dec("20"),
				Discount: &Discount{Type: DiscountAmount, Value: dec("-10")},
			},
			wantNet: "100", wantDiscount: "0", wantTax: "20", wantTotal: "120",
		},
		{
			name:    "zero tax rate",
			in:      LineInput{Quantity: dec("3"), UnitPrice: dec("19.99"), TaxRate: dec("0")},
			wantNet: "59.97", wantDiscount: "0", wantTax: "0", wantTotal: "59.97",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeLine(tt.in, DefaultOptions())
			require.NoError(t, err)
			assert.True(t, got.NetSubtotal.Equal(dec(tt.wantNet)), "net: got %s", got.NetSubtotal)
			assert.True(t, got.DiscountAmount.Equal(dec(tt.wantDiscount)), "discount: got %s", got.DiscountAmount)
			assert.True(t, got.TaxAmount.Equal(dec(tt.wantTax)), "tax: got %s", got.TaxAmount)
			assert.True(t, got.Total.Equal(dec(tt.wantTotal)), "total: got %s", got.Total)
		})
	}
}

// Intermediates must not be rounded; only the final tax and total are.
func TestComputeLine_RoundsOnlyAtOutput(t *testing.T) {
	got, err := ComputeLine(LineInput{
		Quantity:  dec("3"),
		UnitPrice: dec("0.333"),
		TaxRate:   dec("19.6"),
	}, DefaultOptions())
	require.NoError(t, err)

	// 3 * 0.333 = 0.999, kept unrounded in the net subtotal
	assert.True(t, got.NetSubtotal.Equal(dec("0.999")), "net: got %s", got.NetSubtotal)
	// 0.999 * 0.196 = 0.195804 -> 0.20
	assert.True(t, got.TaxAmount.Equal(dec("0.20")), "tax: got %s", got.TaxAmount)
	// 0.999 + 0.195804 = 1.194804 -> 1.19
	assert.True(t, got.Total.Equal(dec("1.19")), "total: got %s", got.Total)
}

func TestComputeLine_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   LineInput
		opts Options
	}{
		{"zero quantity", LineInput{Quantity: dec("0"), UnitPrice: dec("10"), TaxRate: dec("20")}, DefaultOptions()},
		{"negative quantity", LineInput{Quantity: dec("-1"), UnitPrice: dec("10"), TaxRate: dec("20")}, DefaultOptions()},
		{"negative price", LineInput{Quantity: dec("1"), UnitPrice: dec("-10"), TaxRate: dec("20")}, DefaultOptions()},
		{"tax rate above 100", LineInput{Quantity: dec("1"), UnitPrice: dec("10"), TaxRate: dec("101")}, DefaultOptions()},
		{"negative tax rate", LineInput{Quantity: dec("1"), UnitPrice: dec("10"), TaxRate: dec("-1")}, DefaultOptions()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeLine(tt.in, tt.opts)
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
		})
	}
}

func TestComputeLine_NegativePriceAllowedForCreditAdjustments(t *testing.T) {
	opts := DefaultOptions()
	opts.AllowNegativePrice = true

	got, err := ComputeLine(LineInput{Quantity: dec("1"), UnitPrice: dec("-50"), TaxRate: dec("20")}, opts)
	require.NoError(t, err)
	assert.True(t, got.NetSubtotal.Equal(dec("-50")))
	assert.True(t, got.Total.Equal(dec("-60")))
}
