package providers

import (
	"context"
	"strings"
	"time"

	"github.com/Adda-Baaj/bazaar-samachar/internal/domain"
	"github.com/Adda-Baaj/bazaar-samachar/pkg/httpclient"
)

const (
	ProviderTypeMarketaux = "marketaux"
	ProviderTypeRSS       = "rss"
)

// HTTPClient is the transport fetchers use.
type HTTPClient = httpclient.Client

// Provider describes one configured news source.
type Provider struct {
	ID       string
	Type     string
	Endpoint string
	APIKey   string
	Language string
	Limit    int
	// Lookback bounds how old fetched articles may be.
	Lookback time.Duration
	// Timeout bounds a single fetch; zero leaves it to the client.
	Timeout        time.Duration
	Feeds          []string
	Headers        map[string]string
	RequestDelayMS int
}

// RequestDelay is the pause between follow-up requests made for this provider.
func (p Provider) RequestDelay() time.Duration {
	if p.RequestDelayMS <= 0 {
		return 0
	}
	return time.Duration(p.RequestDelayMS) * time.Millisecond
}

// Headers returns the request headers configured for the provider.
func Headers(p Provider) map[string]string {
	out := make(map[string]string, len(p.Headers)+1)
	out["Accept"] = "application/json, application/rss+xml, application/xml;q=0.9, */*;q=0.8"
	for k, v := range p.Headers {
		if k = strings.TrimSpace(k); k != "" {
			out[k] = v
		}
	}
	return out
}

// Fetcher retrieves articles for a provider type.
type Fetcher interface {
	ID() string
	Fetch(ctx context.Context, cfg Provider) ([]domain.Article, error)
}

// FetcherRegistry resolves the fetcher for a configured provider.
type FetcherRegistry interface {
	FetcherFor(cfg Provider) (Fetcher, error)
}

// Option customises fetcher construction.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithNow replaces the wall clock used to compute lookback windows.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
