package analytics

import (
	"github.com/shopspring/decimal"
)

type Direction string

const (
	Long  Direction = "Long"
	Short Direction = "Short"
)

// AggregateResult sums open-position exposure across the sampled traders.
// TotalNotional is exactly LongNotional + ShortNotional; BiasPercent is in
// [-100, 100] and zero when there is no exposure at all.
type AggregateResult struct {
	LongNotional  decimal.Decimal
	ShortNotional decimal.Decimal
	TotalNotional decimal.Decimal
	BiasPercent   decimal.Decimal
}

// DominantPosition is the single largest position (by notional) one trader
// holds.
type DominantPosition struct {
	Coin      string
	Notional  decimal.Decimal
	Direction Direction
}

// TopEntry is one leaderboard rank. Dominant is nil when the trader has no
// position with a resolvable nonzero notional (or their state could not be
// fetched), so rank numbering always lines up with the leaderboard.
type TopEntry struct {
	Rank     int
	Dominant *DominantPosition
}
