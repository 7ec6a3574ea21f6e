package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/optifeed/optifeed/internal/models"
)

const (
	DEFAULT_TELEGRAM_API_BASE = "https://api.telegram.org"

	telegramRequestTimeout = 5 * time.Second
	PARSE_MODE_MARKDOWN_V2 = "MarkdownV2"
)

var (
	telegramInstance *TelegramClient
	telegramOnce     sync.Once

	markdownV2Reserved = regexp.MustCompile("([_*\\[\\]()~`>#+\\-=|{}.!])")
)

// EscapeMarkdownV2 escapes every character the MarkdownV2 dialect reserves.
// Callers apply it to user-controlled substrings only, never to template markup.
func EscapeMarkdownV2(text string) string {
	return markdownV2Reserved.ReplaceAllString(text, "\\$1")
}

type TelegramClient struct {
	Client  *http.Client
	BaseURL string
	Token   string
	ChatID  string
}

func GetTelegramClient() *TelegramClient {
	telegramOnce.Do(func() {
		base := os.Getenv("TELEGRAM_API_BASE")
		if base == "" {
			base = DEFAULT_TELEGRAM_API_BASE
		}
		telegramInstance = &TelegramClient{
			Client:  &http.Client{Timeout: telegramRequestTimeout},
			BaseURL: base,
			Token:   os.Getenv("TELEGRAM_TOKEN"),
			ChatID:  os.Getenv("TELEGRAM_CHAT_ID"),
		}
	})
	return telegramInstance
}

type sendMessagePayload struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage posts one message to the configured chat. Failures come back as
// a structured SendResult, they are never raised past this boundary.
func (c *TelegramClient) SendMessage(text string, parseMode string) models.SendResult {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.BaseURL, c.Token)

	payload, err := json.Marshal(sendMessagePayload{
		ChatID:    c.ChatID,
		Text:      text,
		ParseMode: parseMode,
	})
	if err != nil {
		return models.SendResult{OK: false, Error: err.Error()}
	}

	res, err := c.Client.Post(endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		slog.Error("[TelegramClient] Failed to send message",
			slog.String("error", err.Error()))
		return models.SendResult{OK: false, Error: err.Error()}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		slog.Error("[TelegramClient] Telegram API error response",
			slog.Int("status", res.StatusCode))
		return models.SendResult{OK: false, Error: fmt.Sprintf("telegram API status %d", res.StatusCode)}
	}

	preview := text
	if len(preview) > 60 {
		preview = preview[:60]
	}
	slog.Info("[TelegramClient] Sent Telegram message",
		slog.String("preview", preview))

	return models.SendResult{OK: true}
}
