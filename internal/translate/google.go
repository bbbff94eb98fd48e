package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Adda-Baaj/bazaar-samachar/pkg/httpclient"
)

// DefaultGoogleEndpoint is the public Google Translate endpoint used by browser widgets.
const DefaultGoogleEndpoint = "https://translate.googleapis.com/translate_a/single"

// GoogleTranslator calls the public Google Translate endpoint.
type GoogleTranslator struct {
	client   httpclient.Client
	endpoint string
}

// NewGoogleTranslator builds a translator. Empty endpoint means DefaultGoogleEndpoint.
// No request timeout is applied beyond the caller's context.
func NewGoogleTranslator(client httpclient.Client, endpoint string) *GoogleTranslator {
	if client == nil {
		client = httpclient.NewRestyClient(0)
	}
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultGoogleEndpoint
	}
	return &GoogleTranslator{client: client, endpoint: endpoint}
}

// Translate sends text to the service and returns the joined translated segments.
func (g *GoogleTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	query := map[string]string{
		"client": "gtx",
		"sl":     source,
		"tl":     target,
		"dt":     "t",
		"q":      text,
	}

	resp, err := g.client.GetWithQuery(ctx, g.endpoint, query, nil)
	if err != nil {
		return "", fmt.Errorf("google translate request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("google translate returned status %d", resp.StatusCode())
	}

	out, err := parseGoogleResponse(resp.Body())
	if err != nil {
		return "", fmt.Errorf("google translate decode: %w", err)
	}
	return out, nil
}

// parseGoogleResponse reads the nested array payload:
// [[["translated","original",...],...],...]
func parseGoogleResponse(body []byte) (string, error) {
	var payload []any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", err
	}
	if len(payload) == 0 {
		return "", errors.New("empty response")
	}

	segments, ok := payload[0].([]any)
	if !ok {
		return "", errors.New("unexpected response format")
	}

	var b strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			b.WriteString(s)
		}
	}
	return b.String(), nil
}
