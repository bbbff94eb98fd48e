package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestRedact(t *testing.T) {
	in := "https://api.telegram.org/bot123:ABC/sendMessage?api_token=secret&limit=50"
	out := redact(in)
	assert.Equal(t, false, strings.Contains(out, "123:ABC"))
	assert.Equal(t, false, strings.Contains(out, "secret"))
	assert.Equal(t, true, strings.Contains(out, "limit=50"))
}

func TestGetWithQuerySendsParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "en", r.URL.Query().Get("language"))
		assert.Equal(t, "x", r.Header.Get("X-Test"))
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))
	defer srv.Close()

	c := NewRestyClient(5 * time.Second)
	resp, err := c.GetWithQuery(context.Background(), srv.URL, map[string]string{"language": "en"}, map[string]string{"X-Test": "x"})

	assert.Equal(t, nil, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode())
	assert.Equal(t, "short and stout", string(resp.Body()))
}

func TestPostJSONEncodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var got map[string]string
		json.NewDecoder(r.Body).Decode(&got)
		assert.Equal(t, "hello", got["text"])
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewRestyClient(5 * time.Second)
	resp, err := c.PostJSON(context.Background(), srv.URL, map[string]string{"text": "hello"}, nil)

	assert.Equal(t, nil, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
}

func TestTransportErrorIsRedactedAndUnwrappable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewRestyClient(time.Second)
	_, err := c.Get(ctx, "http://127.0.0.1:1/bot999:SECRET/getMe", nil)

	assert.NotEqual(t, nil, err)
	assert.Equal(t, false, strings.Contains(err.Error(), "999:SECRET"))
	assert.Equal(t, true, errors.Is(err, context.Canceled))
}
