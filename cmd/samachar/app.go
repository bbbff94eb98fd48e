package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Adda-Baaj/bazaar-samachar/internal/config"
	"github.com/Adda-Baaj/bazaar-samachar/internal/crawler"
	"github.com/Adda-Baaj/bazaar-samachar/internal/dedup"
	"github.com/Adda-Baaj/bazaar-samachar/internal/filter"
	"github.com/Adda-Baaj/bazaar-samachar/internal/format"
	"github.com/Adda-Baaj/bazaar-samachar/internal/harvester"
	"github.com/Adda-Baaj/bazaar-samachar/internal/logger"
	"github.com/Adda-Baaj/bazaar-samachar/internal/store"
	"github.com/Adda-Baaj/bazaar-samachar/internal/translate"
	"github.com/Adda-Baaj/bazaar-samachar/pkg/httpclient"
	"github.com/Adda-Baaj/bazaar-samachar/pkg/providers"
	"github.com/Adda-Baaj/bazaar-samachar/pkg/publishers"
	"github.com/Adda-Baaj/bazaar-samachar/pkg/telegram"
)

const (
	translateTimeout = 15 * time.Second
	sendTimeout      = 15 * time.Second
	// pollSlack keeps the HTTP timeout above the long-poll window.
	pollSlack = 10 * time.Second
)

// app holds the wired components plus whatever needs closing on exit.
type app struct {
	harvester *harvester.Harvester
	telegram  *telegram.Client
	closers   []func() error
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.WarnObj("close failed", "shutdown_error", map[string]any{"error": err.Error()})
		}
	}
}

func buildApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*app, error) {
	a := &app{}

	provider := cfg.Provider()
	fetcher, err := providers.DefaultFetcherRegistry(
		httpclient.NewRestyClient(cfg.News.Timeout), log,
	).FetcherFor(provider)
	if err != nil {
		return nil, err
	}

	translator, err := buildTranslator(cfg, log, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	sender, err := telegram.NewClient(httpclient.NewRestyClient(sendTimeout), cfg.Telegram.APIURL, cfg.Telegram.Token)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.telegram, err = telegram.NewClient(httpclient.NewRestyClient(cfg.Telegram.PollTimeout+pollSlack), cfg.Telegram.APIURL, cfg.Telegram.Token)
	if err != nil {
		a.Close()
		return nil, err
	}

	mirrors, err := publishers.LoadFanout(ctx, cfg.Publishers.File, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load mirrors: %w", err)
	}

	hcfg := harvester.Config{
		Provider:  provider,
		Fetcher:   fetcher,
		Filter:    filter.NewKeywords(cfg.Harvester.Keywords),
		Tracker:   dedup.NewMemory(),
		Formatter: format.New(translator),
		Sender:    sender,
		ChannelID: cfg.Telegram.ChannelID,
		Clock:     harvester.SystemClock{},
		Interval:  cfg.Harvester.Interval,
		Pause:     cfg.Harvester.Pause,
		Logger:    log,
	}
	if mirrors.Len() > 0 {
		hcfg.Mirror = mirrors
	}
	if cfg.News.EnrichDescriptions {
		hcfg.Enricher = crawler.NewScraper(providers.DefaultHTTPClient(), log)
	}

	a.harvester, err = harvester.New(hcfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func buildTranslator(cfg *config.Config, log logger.Logger, a *app) (*translate.Adapter, error) {
	opts := []translate.Option{
		translate.WithLanguages(cfg.Translate.Source, cfg.Translate.Target),
		translate.WithMaxChars(cfg.Translate.MaxChars),
		translate.WithLogger(log),
	}
	if cfg.Translate.CachePath != "" {
		cache, err := store.OpenTranslationCache(cfg.Translate.CachePath)
		if err != nil {
			return nil, fmt.Errorf("open translation cache: %w", err)
		}
		a.closers = append(a.closers, cache.Close)
		opts = append(opts, translate.WithCache(cache))
	}

	google := translate.NewGoogleTranslator(httpclient.NewRestyClient(translateTimeout), cfg.Translate.Endpoint)
	return translate.NewAdapter(google, opts...), nil
}
