package hyperliquid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const userAgent = "hyperwatch/1.0"

// UpstreamError is any failure talking to the info API: transport error,
// non-2xx status, or a body that did not decode as JSON.
type UpstreamError struct {
	Op     string // info request type, e.g. "allMids"
	Status int    // HTTP status; 0 on transport/decode failures
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("hyperliquid %s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("hyperliquid %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Client talks to the Hyperliquid info endpoint. All requests go through a
// fixed inter-call pacing delay so a command walking the leaderboard does
// not burst fifty requests at the upstream rate limiter.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	logger  *slog.Logger

	paceMu   sync.Mutex
	pace     time.Duration
	lastCall time.Time
}

func NewClient(baseURL, apiKey string, timeout, pace time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logger,
		pace:    pace,
	}
}

// throttle reserves the next send slot and sleeps until it arrives. Slots
// are spaced c.pace apart, shared across concurrent callers.
func (c *Client) throttle(ctx context.Context) error {
	c.paceMu.Lock()
	now := time.Now()
	next := c.lastCall.Add(c.pace)
	if next.Before(now) {
		next = now
	}
	c.lastCall = next
	c.paceMu.Unlock()

	wait := time.Until(next)
	if wait <= 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (c *Client) fetchInfo(ctx context.Context, body map[string]any) (json.RawMessage, error) {
	op, _ := body["type"].(string)
	if err := c.throttle(ctx); err != nil {
		return nil, err
	}

	buf, err := json.Marshal(body)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(buf))
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Op: op, Status: resp.StatusCode}
	}
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &UpstreamError{Op: op, Err: fmt.Errorf("decode body: %w", err)}
	}
	c.logger.Debug("info request", slog.String("type", op))
	return raw, nil
}

// AllMids fetches the coin → mid-price map. Entries whose price does not
// parse to a nonnegative decimal are dropped; a document that is not a JSON
// object is fatal for the call.
func (c *Client) AllMids(ctx context.Context) (PriceMap, error) {
	raw, err := c.fetchInfo(ctx, map[string]any{"type": "allMids"})
	if err != nil {
		return nil, err
	}
	var mids map[string]any
	if err := json.Unmarshal(raw, &mids); err != nil {
		return nil, &UpstreamError{Op: "allMids", Err: fmt.Errorf("not an object: %w", err)}
	}
	prices := make(PriceMap, len(mids))
	for coin, v := range mids {
		px, ok := toDecimal(v)
		if !ok || px.IsNegative() {
			continue
		}
		prices[coin] = px
	}
	return prices, nil
}

// Leaderboard fetches the ranked trader addresses. Two row shapes are
// accepted: {"leaderboard":[{"user":..}]} and the newer
// {"leaderboardRows":[{"ethAddress":..}]}. Rows without an address are
// skipped; a document with neither array is fatal.
func (c *Client) Leaderboard(ctx context.Context) ([]string, error) {
	raw, err := c.fetchInfo(ctx, map[string]any{"type": "leaderboard"})
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &UpstreamError{Op: "leaderboard", Err: fmt.Errorf("not an object: %w", err)}
	}
	rows, ok := doc["leaderboard"].([]any)
	if !ok {
		rows, ok = doc["leaderboardRows"].([]any)
	}
	if !ok {
		return nil, &UpstreamError{Op: "leaderboard", Err: fmt.Errorf("no leaderboard rows in response")}
	}
	users := make([]string, 0, len(rows))
	for _, r := range rows {
		row, ok := r.(map[string]any)
		if !ok {
			continue
		}
		addr, _ := row["user"].(string)
		if addr == "" {
			addr, _ = row["ethAddress"].(string)
		}
		if addr == "" {
			continue
		}
		users = append(users, addr)
	}
	return users, nil
}

// UserState fetches one trader's open positions. assetPositions entries may
// be flat {"coin","szi"} or carry the fields nested under "position"; szi
// may be a string or a number, and empty/invalid szi counts as flat (zero).
// A missing assetPositions array means no open positions, not an error.
func (c *Client) UserState(ctx context.Context, user string) ([]Position, error) {
	raw, err := c.fetchInfo(ctx, map[string]any{"type": "userState", "user": user})
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &UpstreamError{Op: "userState", Err: fmt.Errorf("not an object: %w", err)}
	}
	entries, _ := doc["assetPositions"].([]any)
	positions := make([]Position, 0, len(entries))
	for _, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		if inner, ok := m["position"].(map[string]any); ok {
			m = inner
		}
		coin, _ := m["coin"].(string)
		if coin == "" {
			continue
		}
		size, _ := toDecimal(m["szi"])
		positions = append(positions, Position{Coin: coin, Size: size})
	}
	return positions, nil
}
