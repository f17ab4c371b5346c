package market

import "github.com/shopspring/decimal"

// FeeTolerance is the largest accepted difference between an offered
// transfer fee and the listing's asking price. It is a pricing policy,
// kept so decimal rounding on the client never rejects an exact offer.
var FeeTolerance = decimal.RequireFromString("0.01")

// MoneyScale is the number of fractional digits persisted for money columns.
const MoneyScale = 2

// RoundMoney rounds to the persisted money scale.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// FeeMatches reports whether fee is within FeeTolerance of askingPrice.
func FeeMatches(fee, askingPrice decimal.Decimal) bool {
	return fee.Sub(askingPrice).Abs().LessThanOrEqual(FeeTolerance)
}
