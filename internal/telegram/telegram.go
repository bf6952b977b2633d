// Package telegram is a minimal Telegram Bot API client covering webhook
// registration and outbound text replies.
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
)

// DefaultAPIBase is the public Bot API host.
const DefaultAPIBase = "https://api.telegram.org"

// MaxMessageLength is the longest text sendMessage accepts.
const MaxMessageLength = 4096

// ErrTokenMissing is returned when no bot token is configured.
var ErrTokenMissing = errors.New("telegram bot token not set")

// Client is a minimal Telegram Bot API client.
type Client struct {
	apiBase    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for apiBase (e.g. "https://api.telegram.org").
func NewClient(apiBase, token string, requestTimeout time.Duration) *Client {
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	return &Client{
		apiBase: strings.TrimRight(apiBase, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Response is the generic Telegram API response wrapper.
type Response struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

// SetWebhook points the bot's webhook at callbackURL. secretToken, when
// non-empty, is echoed back by Telegram in X-Telegram-Bot-Api-Secret-Token.
// The returned Response carries the platform's acknowledgement flag; a nil
// error with OK=false means Telegram refused the registration.
func (c *Client) SetWebhook(ctx context.Context, callbackURL, secretToken string) (*Response, error) {
	if c.token == "" {
		return nil, ErrTokenMissing
	}

	params := url.Values{}
	params.Set("url", callbackURL)
	if secretToken != "" {
		params.Set("secret_token", secretToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.method("setWebhook")+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building setWebhook request: %w", err)
	}
	return c.do(req)
}

// SendMessage sends a text message to the given chat. Text longer than
// MaxMessageLength is truncated.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	if c.token == "" {
		return ErrTokenMissing
	}

	payload, err := json.Marshal(map[string]any{
		"chat_id": chatID,
		"text":    truncate(text, MaxMessageLength),
	})
	if err != nil {
		return fmt.Errorf("encoding sendMessage payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.method("sendMessage"), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("telegram sendMessage rejected (%d): %s", resp.ErrorCode, resp.Description)
	}
	return nil
}

func (c *Client) method(name string) string {
	return c.apiBase + "/bot" + c.token + "/" + name
}

func (c *Client) do(req *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL embeds the token; keep it out of the error text.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("telegram request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read telegram response: %w", err)
	}

	var tgResp Response
	if err := json.Unmarshal(body, &tgResp); err != nil {
		return nil, fmt.Errorf("failed to parse telegram response (HTTP %d): %w", resp.StatusCode, err)
	}
	return &tgResp, nil
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
