// Package money converts between the rupee amounts the API speaks and the
// paise the ledger stores. Balances, bets and payouts are int64 paise
// everywhere below the controllers; floats never touch stored money.
package money

import "github.com/shopspring/decimal"

// ToPaise converts a rupee amount from a JSON number into whole paise.
// Sub-paisa fractions are rejected by the ok flag rather than rounded.
func ToPaise(rupees float64) (int64, bool) {
	d := decimal.NewFromFloat(rupees).Mul(decimal.NewFromInt(100))
	if !d.Equal(d.Truncate(0)) {
		return 0, false
	}
	return d.IntPart(), true
}

// Rupees renders paise back into a rupee amount for API responses.
func Rupees(paise int64) float64 {
	return decimal.NewFromInt(paise).Div(decimal.NewFromInt(100)).InexactFloat64()
}

// MultiplyPaise applies a payout multiplier to a stake exactly.
// Multipliers are admin-configured and may be fractional (e.g. 9.5).
func MultiplyPaise(paise int64, multiplier float64) int64 {
	return decimal.NewFromInt(paise).Mul(decimal.NewFromFloat(multiplier)).Round(0).IntPart()
}
