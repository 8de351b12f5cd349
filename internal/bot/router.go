package bot

import (
	"context"
	"fmt"
	"log/slog"

	"hyperwatch/internal/analytics"
	"hyperwatch/internal/render"
)

const (
	CmdStart     = "start"
	CmdAnalytics = "analytics"
	CmdTop       = "top20"
)

const helpText = `Bot is up.

Available commands:
/start - Show this message
/analytics - TOTAL NOTIONAL, LONG POSITIONS, SHORT POSITIONS and GLOBAL BIAS
/top20 - Top 20 main positions (size, long/short, coin)`

// Router maps command names to the fetch→compute→format pipeline.
type Router struct {
	agg *analytics.Aggregator
	log *slog.Logger
}

func NewRouter(agg *analytics.Aggregator, logger *slog.Logger) *Router {
	return &Router{agg: agg, log: logger}
}

// Handle runs one command to completion and always returns the reply text.
// Errors never cross this boundary: a failed fetch or compute becomes a
// fixed-format error reply, and the next command starts clean. Commands
// this bot does not own return the empty string.
func (r *Router) Handle(ctx context.Context, command string) string {
	switch command {
	case CmdStart:
		// No fetch, no compute: static help.
		return helpText
	case CmdAnalytics:
		res, err := r.agg.Analytics(ctx)
		if err != nil {
			return r.fail(command, err)
		}
		return render.Analytics(res)
	case CmdTop:
		entries, err := r.agg.Top(ctx)
		if err != nil {
			return r.fail(command, err)
		}
		return render.TopN(entries)
	}
	return ""
}

func (r *Router) fail(command string, err error) string {
	r.log.Error("command failed",
		slog.String("command", command),
		slog.String("err", err.Error()),
	)
	return fmt.Sprintf("error fetching %s: %v", command, err)
}
