// Package notify alerts the plant admin chat about non-compliant results.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ansel1/merry"
	"github.com/powerman/structlog"
)

var log = structlog.New(structlog.KeyUnit, "notify")

type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Nop is used when no bot is configured.
type Nop struct{}

func (Nop) Notify(context.Context, string) error { return nil }

const DefaultBaseURL = "https://api.telegram.org"

// Telegram posts messages to one chat through the Bot API.
type Telegram struct {
	Token      string
	ChatID     int64
	BaseURL    string
	HTTPClient *http.Client
}

type sendMessage struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

func (t *Telegram) Notify(ctx context.Context, text string) error {
	b, err := json.Marshal(sendMessage{ChatID: t.ChatID, Text: text})
	if err != nil {
		return merry.Wrap(err)
	}
	base := t.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", base, t.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return merry.Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := t.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	res, err := client.Do(req)
	if err != nil {
		// the url carries the token
		return merry.New("telegram: request failed").Append(redact(err.Error(), t.Token))
	}
	defer res.Body.Close()

	var out apiResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return merry.Prependf(err, "telegram: status %d", res.StatusCode)
	}
	if !out.OK {
		return merry.Errorf("telegram: %d %s", out.ErrorCode, out.Description)
	}
	log.Debug("alert sent", "chat", t.ChatID)
	return nil
}

// FromEnv returns a Telegram notifier when both the bot token and the admin
// chat are set, Nop otherwise.
func FromEnv(token, peer string) (Notifier, error) {
	if token == "" || peer == "" {
		return Nop{}, nil
	}
	chatID, err := strconv.ParseInt(peer, 10, 64)
	if err != nil {
		return nil, merry.Prependf(err, "ADMIN_PEER_ID %q", peer)
	}
	return &Telegram{Token: token, ChatID: chatID}, nil
}

func redact(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "***")
}
