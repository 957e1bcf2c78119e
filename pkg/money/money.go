// Package money centralizes charge arithmetic. Charges are stored at full
// precision; rounding happens exactly once, at the aggregation boundary.
package money

import "github.com/shopspring/decimal"

// Round1 rounds half away from zero to one decimal place. This is the only
// rounding rule the settlement engine applies, always to a final aggregate and
// never to intermediate values being summed.
func Round1(d decimal.Decimal) decimal.Decimal {
	return d.Round(1)
}

// Rounded1 returns the presentation value of an aggregate.
func Rounded1(d decimal.Decimal) float64 {
	f, _ := Round1(d).Float64()
	return f
}

// Sum adds full-precision amounts without rounding.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
