package harvester

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/Adda-Baaj/bazaar-samachar/internal/dedup"
	"github.com/Adda-Baaj/bazaar-samachar/internal/domain"
	"github.com/Adda-Baaj/bazaar-samachar/internal/filter"
	"github.com/Adda-Baaj/bazaar-samachar/internal/format"
	"github.com/Adda-Baaj/bazaar-samachar/internal/translate"
	"github.com/Adda-Baaj/bazaar-samachar/pkg/httpclient"
	"github.com/Adda-Baaj/bazaar-samachar/pkg/providers"
	"github.com/Adda-Baaj/bazaar-samachar/pkg/publishers"
	"github.com/Adda-Baaj/bazaar-samachar/pkg/telegram"
)

type staticFetcher struct {
	articles []domain.Article
	err      error
	calls    int
}

func (f *staticFetcher) ID() string { return "static" }
func (f *staticFetcher) Fetch(context.Context, providers.Provider) ([]domain.Article, error) {
	f.calls++
	return f.articles, f.err
}

type sentMessage struct {
	chatID, text, parseMode string
}

type fakeSender struct {
	failFor map[string]bool
	sent    []sentMessage
}

func (s *fakeSender) SendMessage(_ context.Context, chatID, text, parseMode string) (*telegram.Message, error) {
	for marker := range s.failFor {
		if strings.Contains(text, marker) {
			return nil, errors.New("telegram unavailable")
		}
	}
	s.sent = append(s.sent, sentMessage{chatID: chatID, text: text, parseMode: parseMode})
	return &telegram.Message{MessageID: int64(len(s.sent))}, nil
}

type hindiTranslator struct{}

func (hindiTranslator) Translate(_ context.Context, text string) translate.Result {
	if text == "Fed raises rates" {
		return translate.Result{Text: "फेड ने दरें बढ़ाईं", Kind: translate.Translated}
	}
	return translate.Result{Text: "हिंदी: " + text, Kind: translate.Translated}
}

// fakeClock records sleeps and cancels the run after a fixed number of interval waits.
type fakeClock struct {
	mu        sync.Mutex
	now       time.Time
	sleeps    []time.Duration
	interval  time.Duration
	stopAfter int
	cancel    context.CancelFunc
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	intervals := 0
	for _, s := range c.sleeps {
		if s == c.interval {
			intervals++
		}
	}
	c.mu.Unlock()

	if c.cancel != nil && c.interval > 0 && intervals >= c.stopAfter {
		c.cancel()
	}
	return ctx.Err()
}

type recordingMirror struct {
	events []publishers.Event
	err    error
}

func (m *recordingMirror) Publish(_ context.Context, evt publishers.Event) error {
	m.events = append(m.events, evt)
	return m.err
}

func fedArticle() domain.Article {
	return domain.Article{
		ID:          "u1",
		Title:       "Fed raises rates",
		Description: "The Federal Reserve raised interest rates",
		URL:         "https://example.com/fed",
		PublishedAt: "2024-01-01T10:00:00.000000Z",
		Source:      "marketaux",
	}
}

func newTestHarvester(t *testing.T, fetcher providers.Fetcher, sender Sender, tracker dedup.Tracker, clock Clock) *Harvester {
	t.Helper()
	h, err := New(Config{
		Provider:  providers.Provider{ID: "marketaux", Type: providers.ProviderTypeMarketaux},
		Fetcher:   fetcher,
		Filter:    filter.NewKeywords(nil),
		Tracker:   tracker,
		Formatter: format.New(hindiTranslator{}),
		Sender:    sender,
		ChannelID: "@stockmarket_important_news",
		Clock:     clock,
		Interval:  900 * time.Second,
		Pause:     2 * time.Second,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h
}

func TestCyclePublishesImportantArticle(t *testing.T) {
	fetcher := &staticFetcher{articles: []domain.Article{fedArticle()}}
	sender := &fakeSender{}
	tracker := dedup.NewMemory()
	clock := &fakeClock{}
	h := newTestHarvester(t, fetcher, sender, tracker, clock)

	rep := h.Cycle(context.Background())

	assert.Equal(t, 1, len(sender.sent))
	sent := sender.sent[0]
	assert.Equal(t, "@stockmarket_important_news", sent.chatID)
	assert.Equal(t, telegram.ParseModeMarkdown, sent.parseMode)
	assert.Equal(t, true, strings.Contains(sent.text, "फेड ने दरें बढ़ाईं"))
	assert.Equal(t, true, strings.Contains(sent.text, "🇬🇧 Fed raises rates"))
	assert.Equal(t, true, tracker.Seen("u1"))
	assert.Equal(t, 1, rep.Count(StatusPublished))
	assert.Equal(t, []time.Duration{2 * time.Second}, clock.sleeps)
}

func TestCycleSkipsAlreadyPublished(t *testing.T) {
	fetcher := &staticFetcher{articles: []domain.Article{fedArticle()}}
	sender := &fakeSender{}
	h := newTestHarvester(t, fetcher, sender, dedup.NewMemory(), &fakeClock{})

	h.Cycle(context.Background())
	rep := h.Cycle(context.Background())

	assert.Equal(t, 1, len(sender.sent))
	assert.Equal(t, 1, rep.Count(StatusDuplicate))
	assert.Equal(t, 0, rep.Count(StatusPublished))
}

func TestCycleIgnoresUnimportantArticle(t *testing.T) {
	a := domain.Article{ID: "u2", Title: "Celebrity wedding", Description: "photos from the venue"}
	fetcher := &staticFetcher{articles: []domain.Article{a}}
	sender := &fakeSender{}
	tracker := dedup.NewMemory()
	clock := &fakeClock{}
	h := newTestHarvester(t, fetcher, sender, tracker, clock)

	rep := h.Cycle(context.Background())

	assert.Equal(t, 0, len(sender.sent))
	assert.Equal(t, false, tracker.Seen("u2"))
	assert.Equal(t, 1, rep.Count(StatusFiltered))
	assert.Equal(t, 0, len(clock.sleeps))
}

func TestCycleContinuesAfterPublishFailure(t *testing.T) {
	broken := domain.Article{ID: "u3", Title: "GDP data delayed", Description: ""}
	fetcher := &staticFetcher{articles: []domain.Article{broken, fedArticle()}}
	sender := &fakeSender{failFor: map[string]bool{"GDP data delayed": true}}
	tracker := dedup.NewMemory()
	clock := &fakeClock{}
	h := newTestHarvester(t, fetcher, sender, tracker, clock)

	rep := h.Cycle(context.Background())

	assert.Equal(t, StatusFailed, rep.Results[0].Status)
	assert.NotEqual(t, nil, rep.Results[0].Err)
	assert.Equal(t, StatusPublished, rep.Results[1].Status)
	assert.Equal(t, false, tracker.Seen("u3"))
	assert.Equal(t, true, tracker.Seen("u1"))
	assert.Equal(t, 2, len(clock.sleeps))

	// The failed article is retried on the next cycle.
	sender.failFor = nil
	rep = h.Cycle(context.Background())
	assert.Equal(t, StatusPublished, rep.Results[0].Status)
	assert.Equal(t, StatusDuplicate, rep.Results[1].Status)
}

func TestCycleFetchErrorIsEmptyCycle(t *testing.T) {
	fetcher := &staticFetcher{err: errors.New("dns failure")}
	sender := &fakeSender{}
	h := newTestHarvester(t, fetcher, sender, dedup.NewMemory(), &fakeClock{})

	rep := h.Cycle(context.Background())

	assert.NotEqual(t, nil, rep.FetchErr)
	assert.Equal(t, 0, len(rep.Results))
	assert.Equal(t, 0, len(sender.sent))
}

func TestCycleNewsServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"internal"}`))
	}))
	defer srv.Close()

	sender := &fakeSender{}
	h, err := New(Config{
		Provider: providers.Provider{
			ID:       "marketaux",
			Type:     providers.ProviderTypeMarketaux,
			Endpoint: srv.URL,
			APIKey:   "k",
		},
		Fetcher:   providers.NewMarketauxFetcher(httpclient.NewRestyClient(5 * time.Second)),
		Filter:    filter.NewKeywords(nil),
		Tracker:   dedup.NewMemory(),
		Formatter: format.New(hindiTranslator{}),
		Sender:    sender,
		ChannelID: "@chan",
		Clock:     &fakeClock{},
	})
	assert.Equal(t, nil, err)

	rep := h.Cycle(context.Background())

	assert.Equal(t, 0, rep.Fetched)
	assert.NotEqual(t, nil, rep.FetchErr)
	assert.Equal(t, 0, len(sender.sent))
}

func TestCycleMirrorsPublishedArticles(t *testing.T) {
	mirror := &recordingMirror{err: errors.New("sink down")}
	sender := &fakeSender{}
	tracker := dedup.NewMemory()
	h, err := New(Config{
		Fetcher:   &staticFetcher{articles: []domain.Article{fedArticle()}},
		Filter:    filter.NewKeywords(nil),
		Tracker:   tracker,
		Formatter: format.New(hindiTranslator{}),
		Sender:    sender,
		ChannelID: "@chan",
		Mirror:    mirror,
		Clock:     &fakeClock{},
	})
	assert.Equal(t, nil, err)

	rep := h.Cycle(context.Background())

	assert.Equal(t, 1, len(mirror.events))
	assert.Equal(t, "u1", mirror.events[0].ArticleID)
	assert.Equal(t, "@chan", mirror.events[0].ChannelID)
	assert.Equal(t, 1, rep.Count(StatusPublished))
	assert.Equal(t, true, tracker.Seen("u1"))
}

type descriptionEnricher struct{}

func (descriptionEnricher) Enrich(_ context.Context, _ providers.Provider, in []domain.Article) []domain.Article {
	out := make([]domain.Article, len(in))
	copy(out, in)
	for i := range out {
		if out[i].Description == "" {
			out[i].Description = "Sensex closes higher"
		}
	}
	return out
}

func TestCycleEnrichesBeforeFiltering(t *testing.T) {
	a := domain.Article{ID: "u4", Title: "Markets today"}
	sender := &fakeSender{}
	h, err := New(Config{
		Fetcher:   &staticFetcher{articles: []domain.Article{a}},
		Enricher:  descriptionEnricher{},
		Filter:    filter.NewKeywords(nil),
		Tracker:   dedup.NewMemory(),
		Formatter: format.New(hindiTranslator{}),
		Sender:    sender,
		ChannelID: "@chan",
		Clock:     &fakeClock{},
	})
	assert.Equal(t, nil, err)

	rep := h.Cycle(context.Background())

	assert.Equal(t, 1, rep.Count(StatusPublished))
	assert.Equal(t, 1, len(sender.sent))
}

func TestRunCyclesUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &staticFetcher{articles: []domain.Article{fedArticle()}}
	sender := &fakeSender{}
	clock := &fakeClock{interval: 900 * time.Second, stopAfter: 3, cancel: cancel}
	h := newTestHarvester(t, fetcher, sender, dedup.NewMemory(), clock)

	err := h.Run(ctx)

	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, 3, fetcher.calls)
	assert.Equal(t, 1, len(sender.sent))
	assert.Equal(t, []time.Duration{2 * time.Second, 900 * time.Second, 900 * time.Second, 900 * time.Second}, clock.sleeps)
}

func TestRunKeepsGoingAfterFetchErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &staticFetcher{err: errors.New("timeout")}
	clock := &fakeClock{interval: 900 * time.Second, stopAfter: 2, cancel: cancel}
	h := newTestHarvester(t, fetcher, &fakeSender{}, dedup.NewMemory(), clock)

	h.Run(ctx)

	assert.Equal(t, 2, fetcher.calls)
}

func TestNewValidatesDependencies(t *testing.T) {
	_, err := New(Config{})
	assert.NotEqual(t, nil, err)

	_, err = New(Config{
		Fetcher:   &staticFetcher{},
		Filter:    filter.NewKeywords(nil),
		Tracker:   dedup.NewMemory(),
		Formatter: format.New(hindiTranslator{}),
		Sender:    &fakeSender{},
	})
	assert.NotEqual(t, nil, err)
}

func TestSystemClockSleepHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := SystemClock{}.Sleep(ctx, time.Hour)
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, nil, SystemClock{}.Sleep(context.Background(), time.Millisecond))
}

type countingEnricher struct {
	seen map[string]int
}

func (e *countingEnricher) Enrich(_ context.Context, _ providers.Provider, in []domain.Article) []domain.Article {
	out := make([]domain.Article, len(in))
	copy(out, in)
	for i := range out {
		e.seen[out[i].ID]++
		out[i].Description = "Nifty hits record"
	}
	return out
}

func TestCycleNeverEnrichesRecordedArticles(t *testing.T) {
	enricher := &countingEnricher{seen: map[string]int{}}
	fetcher := &staticFetcher{articles: []domain.Article{
		{ID: "u9", Title: "Markets"},
		{ID: "u10", Title: "Weather update"},
	}}
	tracker := dedup.NewMemory()
	sender := &fakeSender{}
	h, err := New(Config{
		Fetcher:   fetcher,
		Enricher:  enricher,
		Filter:    filter.NewKeywords(nil),
		Tracker:   tracker,
		Formatter: format.New(hindiTranslator{}),
		Sender:    sender,
		ChannelID: "@chan",
		Clock:     &fakeClock{},
	})
	assert.Equal(t, nil, err)

	for i := 0; i < 3; i++ {
		h.Cycle(context.Background())
	}

	assert.Equal(t, true, tracker.Seen("u9"))
	assert.Equal(t, 1, enricher.seen["u9"])
	assert.Equal(t, 2, len(sender.sent))
}
