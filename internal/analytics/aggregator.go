package analytics

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"hyperwatch/internal/hyperliquid"
)

// Source is the slice of the market-data client the aggregator needs.
type Source interface {
	AllMids(ctx context.Context) (hyperliquid.PriceMap, error)
	Leaderboard(ctx context.Context) ([]string, error)
	UserState(ctx context.Context, user string) ([]hyperliquid.Position, error)
}

type Aggregator struct {
	src            Source
	leaderboardCap int
	topN           int
	logger         *slog.Logger
}

func NewAggregator(src Source, leaderboardCap, topN int, logger *slog.Logger) *Aggregator {
	return &Aggregator{src: src, leaderboardCap: leaderboardCap, topN: topN, logger: logger}
}

var hundred = decimal.NewFromInt(100)

// Accumulate splits one trader's positions into long and short notional.
// A coin missing from prices (or priced at zero) is unknown, not worthless:
// it stays out of both sums rather than corrupting them with zeros. A
// zero-size position falls on the short branch and contributes nothing;
// that asymmetry is long-observed behavior and is kept as is.
func Accumulate(prices hyperliquid.PriceMap, positions []hyperliquid.Position) (long, short decimal.Decimal) {
	for _, pos := range positions {
		px, ok := prices[pos.Coin]
		if !ok || px.IsZero() {
			continue
		}
		ntl := pos.Size.Abs().Mul(px)
		if pos.Size.IsPositive() {
			long = long.Add(ntl)
		} else {
			short = short.Add(ntl)
		}
	}
	return long, short
}

// Dominant returns the position with the largest notional, or nil when no
// position resolves to a nonzero notional. Comparison is strictly greater,
// so equal-notional ties keep the first position in input order.
func Dominant(prices hyperliquid.PriceMap, positions []hyperliquid.Position) *DominantPosition {
	var best *DominantPosition
	for _, pos := range positions {
		px, ok := prices[pos.Coin]
		if !ok || px.IsZero() {
			continue
		}
		ntl := pos.Size.Abs().Mul(px)
		if ntl.IsZero() {
			continue
		}
		if best != nil && !ntl.GreaterThan(best.Notional) {
			continue
		}
		dir := Short
		if pos.Size.IsPositive() {
			dir = Long
		}
		best = &DominantPosition{Coin: pos.Coin, Notional: ntl, Direction: dir}
	}
	return best
}

// BuildResult derives totals and bias from accumulated long/short notional.
func BuildResult(long, short decimal.Decimal) AggregateResult {
	total := long.Add(short)
	bias := decimal.Zero
	if !total.IsZero() {
		bias = long.Sub(short).Div(total).Mul(hundred)
	}
	return AggregateResult{
		LongNotional:  long,
		ShortNotional: short,
		TotalNotional: total,
		BiasPercent:   bias,
	}
}

// Analytics aggregates exposure across the top leaderboardCap traders.
// The price map and the leaderboard are indispensable: either failing
// aborts with the error. A single trader's state failing to fetch only
// drops that trader; the leaderboard routinely carries stale or
// inaccessible addresses and one of them must not sink the whole command.
func (a *Aggregator) Analytics(ctx context.Context) (AggregateResult, error) {
	prices, err := a.src.AllMids(ctx)
	if err != nil {
		return AggregateResult{}, err
	}
	users, err := a.src.Leaderboard(ctx)
	if err != nil {
		return AggregateResult{}, err
	}
	if len(users) > a.leaderboardCap {
		users = users[:a.leaderboardCap]
	}

	var long, short decimal.Decimal
	for _, user := range users {
		positions, err := a.src.UserState(ctx, user)
		if err != nil {
			if ctx.Err() != nil {
				return AggregateResult{}, err
			}
			a.logger.Warn("skipping user state",
				slog.String("user", user),
				slog.String("err", err.Error()),
			)
			continue
		}
		l, s := Accumulate(prices, positions)
		long = long.Add(l)
		short = short.Add(s)
	}
	return BuildResult(long, short), nil
}

// Top returns one entry per leaderboard rank, up to topN, each carrying the
// trader's dominant position. Failed or empty traders keep their rank with
// a nil Dominant — same skip policy as Analytics.
func (a *Aggregator) Top(ctx context.Context) ([]TopEntry, error) {
	prices, err := a.src.AllMids(ctx)
	if err != nil {
		return nil, err
	}
	users, err := a.src.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) > a.topN {
		users = users[:a.topN]
	}

	entries := make([]TopEntry, 0, len(users))
	for i, user := range users {
		rank := i + 1
		positions, err := a.src.UserState(ctx, user)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			a.logger.Warn("skipping user state",
				slog.String("user", user),
				slog.String("err", err.Error()),
			)
			entries = append(entries, TopEntry{Rank: rank})
			continue
		}
		entries = append(entries, TopEntry{Rank: rank, Dominant: Dominant(prices, positions)})
	}
	return entries, nil
}
