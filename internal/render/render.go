// Package render turns aggregation results into the bot's reply texts.
// Both renderers are pure: same input, byte-identical output, no clock or
// locale involved.
package render

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"hyperwatch/internal/analytics"
)

var million = decimal.NewFromInt(1_000_000)

// Analytics renders the exposure summary. The bias line always carries the
// literal "(Long Bias)" suffix, even for a negative bias; that cosmetic
// quirk ships as observed.
func Analytics(r analytics.AggregateResult) string {
	return fmt.Sprintf(`📊 **Hyperliquid Analytics (Top Traders)**

**TOTAL NOTIONAL:** %s
**LONG POSITIONS:** %s
**SHORT POSITIONS:** %s
**GLOBAL BIAS:** %s%% (Long Bias)

*Aggregated from the top traders on the leaderboard.*`,
		usd(r.TotalNotional),
		usd(r.LongNotional),
		usd(r.ShortNotional),
		r.BiasPercent.StringFixed(1),
	)
}

// TopN renders one line per leaderboard rank: "3. 12M Long BTC", or a
// fixed "no open positions" line when the trader has no dominant position.
func TopN(entries []analytics.TopEntry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Dominant == nil {
			lines = append(lines, fmt.Sprintf("%d. no open positions", e.Rank))
			continue
		}
		m := e.Dominant.Notional.Div(million).StringFixed(0)
		lines = append(lines, fmt.Sprintf("%d. %sM %s %s", e.Rank, m, e.Dominant.Direction, e.Dominant.Coin))
	}
	return fmt.Sprintf(`🏆 **Top %d Positions (Top Traders)**

%s

*Main position per trader (largest notional). Hyperliquid API data.*`,
		len(entries),
		strings.Join(lines, "\n"),
	)
}

// usd formats a notional as whole dollars with thousands separators.
func usd(d decimal.Decimal) string {
	s := d.StringFixed(0)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	out := groupThousands(s)
	if neg {
		return "-$" + out
	}
	return "$" + out
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
