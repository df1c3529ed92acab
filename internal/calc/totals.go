package calc

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TaxBucket is the aggregate of all lines sharing one tax rate, after its
// share of the document-level discount (and shipping, when taxable).
type TaxBucket struct {
	Rate     decimal.Decimal
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal // rounded, includes any reconciliation remainder
}

// Totals is the document-level rollup.
type Totals struct {
	LinesSubtotal    decimal.Decimal
	DocumentDiscount decimal.Decimal
	AdjustedSubtotal decimal.Decimal
	ShippingAmount   decimal.Decimal
	TotalTax         decimal.Decimal
	TotalGross       decimal.Decimal
	Buckets          []TaxBucket // ascending by rate
}

// ComputeTotals rolls computed lines up into document totals.
//
// Lines may carry different tax rates, so the document discount cannot be
// applied at a single blended rate: it is distributed across rate buckets
// proportionally. Tax-exempt shipping takes part in that distribution as a
// zero-rate bucket (it absorbs its share of the discount without producing
// tax); taxable shipping is instead spread over the rate buckets and taxed
// at each bucket's rate.
//
// Rounding happens once, after all bucket sums. Per-bucket rounded figures
// are reconciled against the rounded total by pushing the remainder into the
// bucket with the largest subtotal (ties: lowest rate).
func ComputeTotals(lines []LineAmounts, docDiscount *Discount, shipping decimal.Decimal, opts Options) Totals {
	linesSubtotal := decimal.Zero
	for _, l := range lines {
		linesSubtotal = linesSubtotal.Add(l.NetSubtotal)
	}

	discountAmount := applyDiscount(linesSubtotal, docDiscount)
	adjusted := linesSubtotal.Sub(discountAmount)

	buckets := groupByRate(lines)
	totalTax := decimal.Zero

	if linesSubtotal.IsPositive() {
		// Allocation base for the document discount. Exempt shipping joins the
		// base so it carries its share of the discount out of the taxed bases.
		allocBase := linesSubtotal
		if !opts.TaxShipping {
			allocBase = allocBase.Add(shipping)
		}

		exact := make([]decimal.Decimal, len(buckets))
		for i := range buckets {
			b := &buckets[i]
			if opts.TaxShipping && shipping.IsPositive() {
				b.Shipping = shipping.Mul(b.Subtotal).Div(linesSubtotal)
			}
			taxed := b.Subtotal.Add(b.Shipping)
			b.Discount = discountAmount.Mul(taxed).Div(allocBase)
			exact[i] = taxed.Sub(b.Discount).Mul(b.Rate).Div(hundred)
			totalTax = totalTax.Add(exact[i])
		}
		totalTax = totalTax.Round(opts.Precision)
		reconcile(buckets, exact, totalTax, opts.Precision)
	}

	gross := adjusted.Add(shipping).Add(totalTax).Round(opts.Precision)

	return Totals{
		LinesSubtotal:    linesSubtotal.Round(opts.Precision),
		DocumentDiscount: discountAmount.Round(opts.Precision),
		AdjustedSubtotal: adjusted.Round(opts.Precision),
		ShippingAmount:   shipping,
		TotalTax:         totalTax,
		TotalGross:       gross,
		Buckets:          buckets,
	}
}

func groupByRate(lines []LineAmounts) []TaxBucket {
	byRate := make(map[string]*TaxBucket)
	for _, l := range lines {
		key := l.TaxRate.String()
		b, ok := byRate[key]
		if !ok {
			b = &TaxBucket{Rate: l.TaxRate, Subtotal: decimal.Zero, Discount: decimal.Zero, Shipping: decimal.Zero, Tax: decimal.Zero}
			byRate[key] = b
		}
		b.Subtotal = b.Subtotal.Add(l.NetSubtotal)
	}

	buckets := make([]TaxBucket, 0, len(byRate))
	for _, b := range byRate {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Rate.LessThan(buckets[j].Rate)
	})
	return buckets
}

// reconcile rounds each bucket's tax and assigns the remainder against the
// rounded total to the largest-subtotal bucket, lowest rate winning ties.
func reconcile(buckets []TaxBucket, exact []decimal.Decimal, totalTax decimal.Decimal, precision int32) {
	if len(buckets) == 0 {
		return
	}
	roundedSum := decimal.Zero
	largest := 0
	for i := range buckets {
		buckets[i].Tax = exact[i].Round(precision)
		roundedSum = roundedSum.Add(buckets[i].Tax)
		// buckets are sorted by rate ascending, so strict comparison keeps
		// the lowest-rate bucket on equal subtotals
		if buckets[i].Subtotal.GreaterThan(buckets[largest].Subtotal) {
			largest = i
		}
	}
	if remainder := totalTax.Sub(roundedSum); !remainder.IsZero() {
		buckets[largest].Tax = buckets[largest].Tax.Add(remainder)
	}
}
