package calc

import "github.com/shopspring/decimal"

// ComputeSalePrice back-solves the monthly sale price from the delivery cost
// base and the desired margin. Financial and policy charges are added after
// margin is applied since they are pass-throughs, not delivered cost.
// Margin must be strictly between 0 and 100; callers clamp or reject first.
func ComputeSalePrice(costsBaseCLP, financialCLP, policyCLP int64, marginPct decimal.Decimal) (int64, error) {
	if marginPct.LessThanOrEqual(decimal.Zero) || marginPct.GreaterThanOrEqual(oneHundred) {
		return 0, ErrInvalidMarginPercent
	}

	divisor := oneHundred.Sub(marginPct).Div(oneHundred)
	baseWithMargin := decimal.NewFromInt(costsBaseCLP).Div(divisor)

	return baseWithMargin.
		Add(decimal.NewFromInt(financialCLP)).
		Add(decimal.NewFromInt(policyCLP)).
		Round(0).
		IntPart(), nil
}
