package billing

import "github.com/shopspring/decimal"

// Due returns the per-member share of the period's total cost
// (bottlePrice * bottleCount split evenly), rounded half-up to the
// nearest integer currency unit. A roster of zero members has nothing
// to split, so the due is zero.
func Due(bottlePrice float64, bottleCount, memberCount int) int64 {
	if memberCount <= 0 {
		return 0
	}
	total := decimal.NewFromFloat(bottlePrice).Mul(decimal.NewFromInt(int64(bottleCount)))
	return total.Div(decimal.NewFromInt(int64(memberCount))).Round(0).IntPart()
}
