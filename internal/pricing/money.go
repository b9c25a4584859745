package pricing

import "github.com/shopspring/decimal"

// Line multiplies a unit price by a quantity without float drift.
func Line(unitPrice float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(quantity)))
}

// Amount rounds a decimal total to cents for storage.
func Amount(total decimal.Decimal) float64 {
	return total.Round(2).InexactFloat64()
}

// Total sums the given line totals.
func Total(lines ...decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line)
	}
	return sum
}
