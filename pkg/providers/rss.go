package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/Adda-Baaj/bazaar-samachar/internal/domain"
	"github.com/Adda-Baaj/bazaar-samachar/internal/logger"
)

// rssFetcher reads articles from RSS/Atom feeds.
type rssFetcher struct {
	client HTTPClient
	log    logger.Logger
	now    func() time.Time
}

// NewRSSFetcher builds a Fetcher for plain RSS/Atom feeds.
func NewRSSFetcher(client HTTPClient, log logger.Logger, opts ...Option) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	o := buildOptions(opts)
	return &rssFetcher{client: client, log: logger.OrNop(log), now: o.now}
}

func (f *rssFetcher) ID() string {
	return ProviderTypeRSS
}

// Fetch reads every configured feed in order. A failing feed is skipped; the call
// only fails when no feed could be read.
func (f *rssFetcher) Fetch(ctx context.Context, cfg Provider) ([]domain.Article, error) {
	if !strings.EqualFold(cfg.Type, ProviderTypeRSS) {
		return nil, fmt.Errorf("rss fetcher received incompatible provider type %q", cfg.Type)
	}
	if len(cfg.Feeds) == 0 {
		return nil, fmt.Errorf("provider %q has no feeds configured", cfg.ID)
	}

	var cutoff time.Time
	if cfg.Lookback > 0 {
		cutoff = f.now().Add(-cfg.Lookback)
	}

	parser := gofeed.NewParser()
	var (
		articles []domain.Article
		errs     []error
		ok       int
	)

	for i, feedURL := range cfg.Feeds {
		if cfg.Limit > 0 && len(articles) >= cfg.Limit {
			break
		}
		if i > 0 && cfg.RequestDelay() > 0 {
			select {
			case <-ctx.Done():
				return articles, ctx.Err()
			case <-time.After(cfg.RequestDelay()):
			}
		}

		feed, err := f.fetchFeed(ctx, parser, cfg, feedURL)
		if err != nil {
			f.log.WarnObj("rss feed fetch failed", "rss_feed_error", map[string]any{
				"provider_id": cfg.ID,
				"feed":        feedURL,
				"error":       err.Error(),
			})
			errs = append(errs, err)
			continue
		}
		ok++

		for _, item := range feed.Items {
			if cfg.Limit > 0 && len(articles) >= cfg.Limit {
				break
			}
			if art, keep := rssArticle(cfg.ID, item, cutoff); keep {
				articles = append(articles, art)
			}
		}
	}

	if ok == 0 {
		return nil, fmt.Errorf("all %d feeds failed: %w", len(cfg.Feeds), errors.Join(errs...))
	}
	return articles, nil
}

func (f *rssFetcher) fetchFeed(ctx context.Context, parser *gofeed.Parser, cfg Provider, feedURL string) (*gofeed.Feed, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	resp, err := f.client.Get(ctx, feedURL, Headers(cfg))
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d body: %s", resp.StatusCode(), responseSnippet(resp.Body()))
	}

	feed, err := parser.Parse(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// rssArticle converts a feed item, dropping items without a link or older than cutoff.
func rssArticle(source string, item *gofeed.Item, cutoff time.Time) (domain.Article, bool) {
	if item == nil {
		return domain.Article{}, false
	}
	link := strings.TrimSpace(item.Link)
	if link == "" {
		return domain.Article{}, false
	}
	if !cutoff.IsZero() && item.PublishedParsed != nil && item.PublishedParsed.Before(cutoff) {
		return domain.Article{}, false
	}

	published := item.Published
	if published == "" {
		published = item.Updated
	}

	return domain.Article{
		ID:          hashURL(link),
		Title:       strings.TrimSpace(item.Title),
		Description: strings.TrimSpace(item.Description),
		URL:         link,
		PublishedAt: published,
		Source:      source,
	}, true
}
