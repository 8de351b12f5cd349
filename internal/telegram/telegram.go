// Package telegram is a minimal Bot API client: just enough surface to
// receive webhook updates and send text replies.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

type Chat struct {
	ID int64 `json:"id"`
}

// Command extracts the command name from message text:
// "/top20@SomeBot now" → "top20". Empty when the text is not a command.
func Command(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text)[0][1:]
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd)
}

type Bot struct {
	token   string
	baseURL string
	httpc   *http.Client
	logger  *slog.Logger
}

func NewBot(token, baseURL string, logger *slog.Logger) *Bot {
	return &Bot{
		token:   token,
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) error {
	return b.call(ctx, "sendMessage", map[string]any{"chat_id": chatID, "text": text})
}

func (b *Bot) SetWebhook(ctx context.Context, url string) error {
	return b.call(ctx, "setWebhook", map[string]any{"url": url})
}

func (b *Bot) call(ctx context.Context, method string, body map[string]any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	url := fmt.Sprintf("%s/bot%s/%s", b.baseURL, b.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	// The Bot API reports failures in-band: {"ok":false,"description":..}.
	var ack struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return fmt.Errorf("telegram %s: decode: %w", method, err)
	}
	if !ack.OK {
		return fmt.Errorf("telegram %s: %s", method, ack.Description)
	}
	b.logger.Debug("telegram call", slog.String("method", method))
	return nil
}
