package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/Adda-Baaj/bazaar-samachar/pkg/httpclient"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(h)
	c, err := NewClient(httpclient.NewRestyClient(5*time.Second), srv.URL, "123:ABC")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c, srv.Close
}

func TestSendMessage(t *testing.T) {
	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot123:ABC/sendMessage", r.URL.Path)

		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "@stockmarket_important_news", req["chat_id"])
		assert.Equal(t, "hello *world*", req["text"])
		assert.Equal(t, "Markdown", req["parse_mode"])

		w.Write([]byte(`{"ok":true,"result":{"message_id":7,"chat":{"id":-100,"type":"channel"},"date":1}}`))
	})
	defer done()

	msg, err := c.SendMessage(context.Background(), "@stockmarket_important_news", "hello *world*", ParseModeMarkdown)

	assert.Equal(t, nil, err)
	assert.Equal(t, int64(7), msg.MessageID)
	assert.Equal(t, int64(-100), msg.Chat.ID)
}

func TestSendMessageAPIError(t *testing.T) {
	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities"}`))
	})
	defer done()

	_, err := c.SendMessage(context.Background(), "@chan", "_broken", ParseModeMarkdown)

	var apiErr *APIError
	assert.Equal(t, true, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, "Bad Request: can't parse entities", apiErr.Description)
}

func TestSendMessageNonJSONBody(t *testing.T) {
	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>bad gateway</html>`))
	})
	defer done()

	_, err := c.SendMessage(context.Background(), "@chan", "x", "")

	var apiErr *APIError
	assert.Equal(t, true, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestGetUpdates(t *testing.T) {
	c, done := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot123:ABC/getUpdates", r.URL.Path)

		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, float64(42), req["offset"])
		assert.Equal(t, float64(30), req["timeout"])

		w.Write([]byte(`{"ok":true,"result":[{"update_id":42,"message":{"message_id":1,"chat":{"id":99,"type":"private"},"text":"/start","date":1}}]}`))
	})
	defer done()

	updates, err := c.GetUpdates(context.Background(), 42, 30*time.Second)

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(updates))
	assert.Equal(t, int64(42), updates[0].UpdateID)
	assert.Equal(t, "/start", updates[0].Message.Text)
	assert.Equal(t, int64(99), updates[0].Message.Chat.ID)
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient(nil, "", "  ")
	assert.Equal(t, ErrMissingToken, err)
}
