package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Adda-Baaj/bazaar-samachar/internal/domain"
)

const (
	DefaultMarketauxEndpoint = "https://api.marketaux.com/v1/news/all"

	marketauxTimeLayout = "2006-01-02T15:04:05"
)

// marketauxFetcher pulls recent articles from the marketaux news API.
type marketauxFetcher struct {
	client HTTPClient
	now    func() time.Time
}

// NewMarketauxFetcher builds a Fetcher for the marketaux /news/all endpoint.
func NewMarketauxFetcher(client HTTPClient, opts ...Option) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	o := buildOptions(opts)
	return &marketauxFetcher{client: client, now: o.now}
}

func (f *marketauxFetcher) ID() string {
	return ProviderTypeMarketaux
}

// Fetch issues one request for articles published within the lookback window.
// Any status other than 200 yields no articles and an error; there is no retry.
func (f *marketauxFetcher) Fetch(ctx context.Context, cfg Provider) ([]domain.Article, error) {
	if !strings.EqualFold(cfg.Type, ProviderTypeMarketaux) {
		return nil, fmt.Errorf("marketaux fetcher received incompatible provider type %q", cfg.Type)
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultMarketauxEndpoint
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	resp, err := f.client.GetWithQuery(ctx, endpoint, f.query(cfg), Headers(cfg))
	if err != nil {
		return nil, fmt.Errorf("fetch %s news: %w", cfg.ID, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d body: %s", cfg.ID, resp.StatusCode(), responseSnippet(body))
	}

	var payload marketauxResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", cfg.ID, err)
	}

	return buildMarketauxArticles(cfg.ID, payload.Data), nil
}

func (f *marketauxFetcher) query(cfg Provider) map[string]string {
	q := map[string]string{
		"api_token": cfg.APIKey,
	}
	if cfg.Language != "" {
		q["language"] = cfg.Language
	}
	if cfg.Limit > 0 {
		q["limit"] = strconv.Itoa(cfg.Limit)
	}
	if cfg.Lookback > 0 {
		q["published_after"] = f.now().UTC().Add(-cfg.Lookback).Format(marketauxTimeLayout)
	}
	return q
}

func buildMarketauxArticles(source string, items []marketauxArticle) []domain.Article {
	articles := make([]domain.Article, 0, len(items))
	for _, item := range items {
		id := strings.TrimSpace(item.UUID)
		if id == "" {
			id = hashURL(strings.TrimSpace(item.URL))
		}
		articles = append(articles, domain.Article{
			ID:          id,
			Title:       item.Title,
			Description: item.Description,
			URL:         item.URL,
			PublishedAt: item.PublishedAt,
			Source:      source,
		})
	}
	return articles
}

type marketauxResponse struct {
	Data []marketauxArticle `json:"data"`
}

type marketauxArticle struct {
	UUID        string `json:"uuid"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
}
