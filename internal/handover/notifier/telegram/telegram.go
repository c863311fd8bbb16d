package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"go-handover/internal/common/notifyprotocol"
)

const (
	DefaultServerAddress = "https://api.telegram.org"
	timeLayout           = "2006-01-02 15:04:05"
)

var (
	ErrNotConfigured = errors.New("telegram token and chat id are required")
)

type Config struct {
	ServerAddress string
	Token         string
	ChatID        string
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Sink posts a text message per scan to a Telegram chat through the Bot API.
type Sink struct {
	cfg    Config
	client *resty.Client
}

func New(cfg Config) (*Sink, error) {
	if cfg.Token == "" || cfg.ChatID == "" {
		return nil, ErrNotConfigured
	}
	if cfg.ServerAddress == "" {
		cfg.ServerAddress = DefaultServerAddress
	}
	return &Sink{
		cfg:    cfg,
		client: resty.New().SetBaseURL(strings.TrimRight(cfg.ServerAddress, "/")),
	}, nil
}

func (s *Sink) Name() string {
	return "telegram"
}

func (s *Sink) Send(ctx context.Context, msg notifyprotocol.Message) error {
	result := apiResponse{}
	resp, err := s.client.
		R().
		SetContext(ctx).
		SetPathParam("token", s.cfg.Token).
		SetBody(sendMessageRequest{ChatID: s.cfg.ChatID, Text: Render(msg)}).
		SetResult(&result).
		SetError(&result).
		Post("/bot{token}/sendMessage")
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK || !result.OK {
		return fmt.Errorf("telegram rejected message: status %d: %s", resp.StatusCode(), result.Description)
	}
	return nil
}

// Render formats the chat text for one scan.
func Render(msg notifyprotocol.Message) string {
	lines := []string{
		fmt.Sprintf("✅ %s", displaySource(msg.Source)),
		fmt.Sprintf("Order: #%s", msg.OrderNumber),
		fmt.Sprintf("Tracking: %s", msg.TrackingNumber),
		fmt.Sprintf("File: %s", msg.OriginFile),
		fmt.Sprintf("Time: %s", msg.ScannedAt.Local().Format(timeLayout)),
	}
	return strings.Join(lines, "\n")
}

func displaySource(source string) string {
	switch source {
	case "shopee":
		return "Shopee"
	case "tiktok":
		return "TikTok"
	}
	return "Unknown"
}
