package telegram

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCommandExtraction(t *testing.T) {
	cases := map[string]string{
		"/start":                "start",
		"/analytics":            "analytics",
		"/top20@WhaleWatchBot":  "top20",
		"/TOP20":                "top20",
		"  /start now  ":        "start",
		"hello":                 "",
		"":                      "",
		"/":                     "",
		"analytics without cmd": "",
	}
	for in, want := range cases {
		require.Equal(t, want, Command(in), "input %q", in)
	}
}

func TestSendMessageHitsBotEndpoint(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	b := NewBot("123:secret", srv.URL, testLogger())
	err := b.SendMessage(context.Background(), 42, "hello")
	require.NoError(t, err)
	require.Equal(t, "/bot123:secret/sendMessage", gotPath)
	require.EqualValues(t, 42, gotBody["chat_id"])
	require.Equal(t, "hello", gotBody["text"])
}

func TestAPIFailureSurfacesDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer srv.Close()

	b := NewBot("123:secret", srv.URL, testLogger())
	err := b.SendMessage(context.Background(), 42, "hello")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("want description in error, got %v", err)
	}
}

func TestSetWebhook(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	b := NewBot("123:secret", srv.URL, testLogger())
	require.NoError(t, b.SetWebhook(context.Background(), "https://bot.example/webhook"))
	require.Equal(t, "https://bot.example/webhook", gotBody["url"])
}
