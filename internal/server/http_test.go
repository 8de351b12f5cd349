package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"hyperwatch/internal/analytics"
	"hyperwatch/internal/bot"
	"hyperwatch/internal/hyperliquid"
)

type fakeSource struct{}

func (fakeSource) AllMids(ctx context.Context) (hyperliquid.PriceMap, error) {
	return hyperliquid.PriceMap{"BTC": decimal.NewFromInt(50000)}, nil
}

func (fakeSource) Leaderboard(ctx context.Context) ([]string, error) {
	return []string{"A"}, nil
}

func (fakeSource) UserState(ctx context.Context, user string) ([]hyperliquid.Position, error) {
	return []hyperliquid.Position{{Coin: "BTC", Size: decimal.NewFromInt(1)}}, nil
}

type recordingSender struct {
	mu     sync.Mutex
	chatID int64
	text   string
}

func (r *recordingSender) SendMessage(ctx context.Context, chatID int64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chatID = chatID
	r.text = text
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer() (*HTTPServer, *bot.Pool, *recordingSender) {
	router := bot.NewRouter(analytics.NewAggregator(fakeSource{}, 50, 20, testLogger()), testLogger())
	pool := bot.NewPool(2, 5*time.Second)
	sender := &recordingSender{}
	return NewHTTPServer(router, pool, sender, testLogger()), pool, sender
}

func TestWebhookRepliesViaSender(t *testing.T) {
	srv, pool, sender := newTestServer()

	body := `{"update_id":1,"message":{"message_id":7,"chat":{"id":99},"text":"/start"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status got %d want 200", rec.Code)
	}
	pool.Wait()

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if sender.chatID != 99 {
		t.Fatalf("chat id got %d want 99", sender.chatID)
	}
	if !strings.Contains(sender.text, "/analytics") {
		t.Fatalf("reply is not the help text:\n%s", sender.text)
	}
}

func TestWebhookRunsPipeline(t *testing.T) {
	srv, pool, sender := newTestServer()

	body := `{"update_id":2,"message":{"message_id":8,"chat":{"id":5},"text":"/analytics"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	pool.Wait()

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if !strings.Contains(sender.text, "**TOTAL NOTIONAL:** $50,000") {
		t.Fatalf("pipeline reply wrong:\n%s", sender.text)
	}
}

func TestWebhookBadJSONStill200(t *testing.T) {
	srv, pool, sender := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("bad payloads must still be acked, got %d", rec.Code)
	}
	pool.Wait()
	sender.mu.Lock()
	defer sender.mu.Unlock()
	if sender.text != "" {
		t.Fatalf("no reply expected, got %q", sender.text)
	}
}

func TestWebhookIgnoresNonCommands(t *testing.T) {
	srv, pool, sender := newTestServer()

	body := `{"update_id":3,"message":{"message_id":9,"chat":{"id":5},"text":"hello there"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	pool.Wait()

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if sender.text != "" {
		t.Fatalf("plain text must not trigger a reply, got %q", sender.text)
	}
}

func TestWebhookMethodGuard(t *testing.T) {
	srv, _, _ := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET should be rejected, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("health got %d want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok": true`) {
		t.Fatalf("health body: %s", rec.Body.String())
	}
}
