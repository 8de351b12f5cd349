package hyperliquid

import (
	"github.com/shopspring/decimal"
)

// PriceMap maps coin symbol to mid price. Absence of a coin means its price
// is unknown.
type PriceMap map[string]decimal.Decimal

// Position is one open position. Size is signed: positive is long,
// negative is short.
type Position struct {
	Coin string
	Size decimal.Decimal
}

// toDecimal converts a decoded JSON value (string or number) to a decimal.
// Empty strings and unparseable values report ok=false with a zero value.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case string:
		if t == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(t)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case float64:
		return decimal.NewFromFloat(t), true
	}
	return decimal.Zero, false
}
