package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"hyperwatch/internal/bot"
	"hyperwatch/internal/telegram"
)

// Sender is the reply channel; satisfied by *telegram.Bot.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

type HTTPServer struct {
	commands *bot.Router
	pool     *bot.Pool
	sender   Sender
	log      *slog.Logger
	mux      *http.ServeMux
}

func NewHTTPServer(commands *bot.Router, pool *bot.Pool, sender Sender, logger *slog.Logger) *HTTPServer {
	s := &HTTPServer{
		commands: commands,
		pool:     pool,
		sender:   sender,
		log:      logger,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *HTTPServer) Router() http.Handler { return s.mux }

func (s *HTTPServer) routes() {
	s.mux.HandleFunc("/webhook", s.webhook)
	s.mux.HandleFunc("/api/health", s.apiHealth)
}

// webhook accepts a Telegram update, acks immediately, and hands the
// command to the pool; the reply goes out via sendMessage once the
// pipeline finishes. Junk payloads still get a 200: anything else makes
// Telegram re-deliver the same junk forever.
func (s *HTTPServer) webhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var up telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&up); err != nil {
		s.log.Warn("webhook decode failed", slog.String("err", err.Error()))
		_, _ = w.Write([]byte("OK"))
		return
	}
	if up.Message == nil {
		_, _ = w.Write([]byte("OK"))
		return
	}

	command := telegram.Command(up.Message.Text)
	chatID := up.Message.Chat.ID
	if command != "" {
		s.pool.Submit(func(ctx context.Context) {
			reply := s.commands.Handle(ctx, command)
			if reply == "" {
				return // not one of ours
			}
			if err := s.sender.SendMessage(ctx, chatID, reply); err != nil {
				s.log.Error("send reply failed",
					slog.Int64("chat_id", chatID),
					slog.String("err", err.Error()),
				)
			}
		})
	}
	_, _ = w.Write([]byte("OK"))
}

func (s *HTTPServer) apiHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"ok": true})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
