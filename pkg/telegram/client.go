package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Adda-Baaj/bazaar-samachar/pkg/httpclient"
)

const (
	DefaultAPIURL = "https://api.telegram.org"

	ParseModeMarkdown = "Markdown"
)

// ErrMissingToken is returned when a client is built without a bot token.
var ErrMissingToken = errors.New("telegram bot token is empty")

// Client talks to the Telegram Bot API.
type Client struct {
	http   httpclient.Client
	apiURL string
	token  string
}

// NewClient builds a Bot API client. Empty apiURL means DefaultAPIURL.
func NewClient(http httpclient.Client, apiURL, token string) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	if http == nil {
		http = httpclient.NewRestyClient(0)
	}
	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{http: http, apiURL: apiURL, token: token}, nil
}

// APIError is a non-successful Bot API answer.
type APIError struct {
	Method      string
	StatusCode  int
	ErrorCode   int
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("telegram %s failed: status %d: %s", e.Method, e.StatusCode, e.Description)
	}
	return fmt.Sprintf("telegram %s failed: status %d", e.Method, e.StatusCode)
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// SendMessage posts text to a chat or channel (numeric id or @username).
func (c *Client) SendMessage(ctx context.Context, chatID, text, parseMode string) (*Message, error) {
	req := sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: parseMode,
	}

	var msg Message
	if err := c.call(ctx, "sendMessage", req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

type getUpdatesRequest struct {
	Offset         int64    `json:"offset,omitempty"`
	Timeout        int      `json:"timeout"`
	AllowedUpdates []string `json:"allowed_updates"`
}

// GetUpdates long-polls for new messages. Updates below offset are confirmed and dropped
// by Telegram.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	req := getUpdatesRequest{
		Offset:         offset,
		Timeout:        int(timeout / time.Second),
		AllowedUpdates: []string{"message"},
	}

	var updates []Update
	if err := c.call(ctx, "getUpdates", req, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (c *Client) call(ctx context.Context, method string, body, out any) error {
	url := c.apiURL + "/bot" + c.token + "/" + method

	resp, err := c.http.PostJSON(ctx, url, body, nil)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}

	var decoded apiResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return &APIError{Method: method, StatusCode: resp.StatusCode()}
	}
	if resp.StatusCode() != 200 || !decoded.OK {
		return &APIError{
			Method:      method,
			StatusCode:  resp.StatusCode(),
			ErrorCode:   decoded.ErrorCode,
			Description: decoded.Description,
		}
	}

	if out != nil && len(decoded.Result) > 0 {
		if err := json.Unmarshal(decoded.Result, out); err != nil {
			return fmt.Errorf("telegram %s: decode result: %w", method, err)
		}
	}
	return nil
}
