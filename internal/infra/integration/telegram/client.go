package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
)

const defaultBaseURL = "https://api.telegram.org"

var ErrNotConfigured = errors.New("telegram not configured")

type Config struct {
	BotToken string
	ChatID   string
	BaseURL  string
	Timeout  time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
	log  logrus.FieldLogger
}

func NewClient(cfg Config, log logrus.FieldLogger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}, log: log.WithField("service", "telegram")}
}

func (c *Client) Enabled() bool {
	return c.cfg.BotToken != "" && c.cfg.ChatID != ""
}

// Send posts a new message. Non-urgent messages are delivered silently.
func (c *Client) Send(ctx context.Context, text string, urgent bool) (int64, error) {
	if !c.Enabled() {
		c.log.Debug("⚠️ Telegram: bot token or chat id not configured")
		return 0, ErrNotConfigured
	}

	resp, err := c.call(ctx, "sendMessage", sendMessageRequest{
		ChatID:                c.cfg.ChatID,
		Text:                  text,
		DisableNotification:   !urgent,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return 0, err
	}
	c.log.WithField("message_id", resp.Result.MessageID).Debug("✅ Telegram: message sent")
	return resp.Result.MessageID, nil
}

// Edit replaces the text of an existing message. An unchanged text counts as
// success; a deleted message maps to entity.ErrMessageNotFound.
func (c *Client) Edit(ctx context.Context, messageID int64, text string) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}

	_, err := c.call(ctx, "editMessageText", editMessageRequest{
		ChatID:                c.cfg.ChatID,
		MessageID:             messageID,
		Text:                  text,
		DisableWebPagePreview: true,
	})
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		desc := strings.ToLower(apiErr.Description)
		switch {
		case strings.Contains(desc, "message is not modified"):
			return nil
		case strings.Contains(desc, "message to edit not found"), strings.Contains(desc, "message can't be edited"):
			return fmt.Errorf("%w: %s", entity.ErrMessageNotFound, apiErr.Description)
		}
	}
	return err
}

// APIError is a response the Bot API rejected.
type APIError struct {
	Method      string
	StatusCode  int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.StatusCode, e.Description)
}

func (c *Client) call(ctx context.Context, method string, payload interface{}) (*apiResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.cfg.BaseURL, c.cfg.BotToken, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// The URL carries the bot token; keep it out of logs.
		return nil, fmt.Errorf("telegram %s: request failed: %w", method, unwrapURLError(err))
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &APIError{Method: method, StatusCode: resp.StatusCode, Description: strings.TrimSpace(string(respBody))}
	}
	if !result.OK || resp.StatusCode != http.StatusOK {
		return nil, &APIError{Method: method, StatusCode: resp.StatusCode, Description: result.Description}
	}
	return &result, nil
}

func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
