// Package notify delivers best-effort push notifications. Send never
// returns an error to callers; delivery failures are logged and dropped.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Notifier is the outbound notification channel.
type Notifier interface {
	Send(ctx context.Context, text string) bool
}

// Telegram sends messages through the Telegram Bot API.
type Telegram struct {
	token  string
	chatID string
	client *http.Client
	log    *zap.Logger
}

func NewTelegram(token, chatID string, log *zap.Logger) *Telegram {
	return &Telegram{
		token:  token,
		chatID: chatID,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

// Send posts text to the configured chat. Returns false when the channel
// is unconfigured or delivery fails.
func (t *Telegram) Send(ctx context.Context, text string) bool {
	if t.token == "" || t.chatID == "" {
		t.log.Warn("telegram message skipped: channel not configured")
		return false
	}

	payload, _ := json.Marshal(map[string]string{
		"chat_id": t.chatID,
		"text":    text,
	})
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", t.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.log.Error("telegram request build failed", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		t.log.Error("telegram send failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.log.Error("telegram send rejected", zap.Int("status", resp.StatusCode))
		return false
	}
	t.log.Info("telegram message sent", zap.String("chat_id", t.chatID))
	return true
}

// Nop is a Notifier that drops everything; used when no channel is
// configured.
type Nop struct{}

func (Nop) Send(context.Context, string) bool { return false }
