package crawler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Adda-Baaj/bazaar-samachar/internal/domain"
	"github.com/Adda-Baaj/bazaar-samachar/internal/logger"
	"github.com/Adda-Baaj/bazaar-samachar/pkg/httpclient"
	"github.com/Adda-Baaj/bazaar-samachar/pkg/providers"
)

const maxHTMLBodyBytes = 1 << 20 // 1 MiB

// Scraper fills in missing article descriptions from the article page's metadata.
type Scraper struct {
	client httpclient.Client
	log    logger.Logger
}

// NewScraper creates a new Scraper with the given HTTP client and logger.
func NewScraper(client httpclient.Client, log logger.Logger) *Scraper {
	if client == nil {
		client = providers.DefaultHTTPClient()
	}
	return &Scraper{client: client, log: logger.OrNop(log)}
}

// Enrich returns a copy of articles where empty descriptions were replaced by the page's
// og:description or meta description. Articles are visited one at a time; failures keep
// the original article.
func (s *Scraper) Enrich(ctx context.Context, cfg providers.Provider, articles []domain.Article) []domain.Article {
	out := make([]domain.Article, len(articles))
	copy(out, articles)

	delay := cfg.RequestDelay()
	scraped := 0

	for idx, art := range articles {
		if ctx.Err() != nil {
			break
		}
		if strings.TrimSpace(art.Description) != "" || strings.TrimSpace(art.URL) == "" {
			continue
		}

		if scraped > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return out
			case <-time.After(delay):
			}
		}
		scraped++

		desc, err := s.fetchDescription(ctx, cfg, art)
		if err != nil {
			s.log.WarnObj("article metadata scrape failed", "metadata_error", map[string]any{
				"provider_id": cfg.ID,
				"article_id":  art.ID,
				"url":         art.URL,
				"error":       err.Error(),
			})
			continue
		}
		out[idx].Description = desc
	}

	return out
}

// fetchDescription fetches the article HTML and extracts its description.
func (s *Scraper) fetchDescription(ctx context.Context, cfg providers.Provider, art domain.Article) (string, error) {
	s.log.DebugObj("scraping article metadata", "scrape_start", map[string]any{
		"provider_id": cfg.ID,
		"url":         art.URL,
	})

	resp, err := s.client.Get(ctx, art.URL, map[string]string{"Accept": "text/html"})
	if err != nil {
		return "", fmt.Errorf("http fetch: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		snippet := strings.TrimSpace(string(resp.Body()))
		if len(snippet) > 1024 {
			snippet = snippet[:1024]
		}
		return "", fmt.Errorf("status %d body: %s", resp.StatusCode(), snippet)
	}

	body := resp.Body()
	if len(body) > maxHTMLBodyBytes {
		s.log.InfoObj("html body truncated", "truncation", map[string]any{
			"provider_id": cfg.ID,
			"url":         art.URL,
			"original":    len(body),
			"kept":        maxHTMLBodyBytes,
		})
		body = body[:maxHTMLBodyBytes]
	}

	meta, err := parseMeta(body)
	if err != nil {
		return "", err
	}
	if meta.Description == "" {
		return "", fmt.Errorf("page has no description metadata")
	}
	return meta.Description, nil
}

// parseMeta extracts page metadata from the HTML body.
func parseMeta(body []byte) (pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return pageMeta{}, fmt.Errorf("parse html: %w", err)
	}

	extract := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	return pageMeta{
		Description: firstNonEmpty(
			extract(`meta[property="og:description"]`),
			extract(`meta[name="description"]`),
		),
	}, nil
}

// pageMeta holds metadata extracted from an HTML page.
type pageMeta struct {
	Description string
}

// firstNonEmpty returns the first non-empty string from the given values.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
