package harvester

import (
	"context"
	"errors"
	"time"

	"github.com/Adda-Baaj/bazaar-samachar/internal/dedup"
	"github.com/Adda-Baaj/bazaar-samachar/internal/domain"
	"github.com/Adda-Baaj/bazaar-samachar/internal/format"
	"github.com/Adda-Baaj/bazaar-samachar/internal/logger"
	"github.com/Adda-Baaj/bazaar-samachar/pkg/providers"
	"github.com/Adda-Baaj/bazaar-samachar/pkg/publishers"
	"github.com/Adda-Baaj/bazaar-samachar/pkg/telegram"
)

const (
	DefaultInterval = 15 * time.Minute
	DefaultPause    = 2 * time.Second
)

// Filter decides whether an article is worth publishing.
type Filter interface {
	Important(title, description string) bool
}

// Enricher fills in missing article fields before filtering.
type Enricher interface {
	Enrich(ctx context.Context, cfg providers.Provider, articles []domain.Article) []domain.Article
}

// Formatter renders the channel message for an article.
type Formatter interface {
	Format(ctx context.Context, a domain.Article) format.Message
}

// Sender posts a message to a chat.
type Sender interface {
	SendMessage(ctx context.Context, chatID, text, parseMode string) (*telegram.Message, error)
}

// Mirror receives an event for every article that reached the channel.
type Mirror interface {
	Publish(ctx context.Context, evt publishers.Event) error
}

// Config carries the loop's collaborators. Fetcher, Filter, Tracker, Formatter and Sender are required.
type Config struct {
	Provider  providers.Provider
	Fetcher   providers.Fetcher
	Enricher  Enricher
	Filter    Filter
	Tracker   dedup.Tracker
	Formatter Formatter
	Sender    Sender
	ChannelID string
	Mirror    Mirror
	Clock     Clock
	Interval  time.Duration
	Pause     time.Duration
	Logger    logger.Logger
}

// Harvester fetches, filters, formats and publishes articles one cycle at a time.
type Harvester struct {
	cfg Config
	log logger.Logger
}

func New(cfg Config) (*Harvester, error) {
	switch {
	case cfg.Fetcher == nil:
		return nil, errors.New("harvester: fetcher is required")
	case cfg.Filter == nil:
		return nil, errors.New("harvester: filter is required")
	case cfg.Tracker == nil:
		return nil, errors.New("harvester: tracker is required")
	case cfg.Formatter == nil:
		return nil, errors.New("harvester: formatter is required")
	case cfg.Sender == nil:
		return nil, errors.New("harvester: sender is required")
	case cfg.ChannelID == "":
		return nil, errors.New("harvester: channel id is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Pause < 0 {
		cfg.Pause = 0
	}
	return &Harvester{cfg: cfg, log: logger.OrNop(cfg.Logger)}, nil
}

// Run performs a cycle immediately and then once per interval until ctx is cancelled.
// A failing cycle never stops later ones.
func (h *Harvester) Run(ctx context.Context) error {
	h.log.InfoObj("harvester started", "harvester_start", map[string]any{
		"provider": h.cfg.Provider.ID,
		"channel":  h.cfg.ChannelID,
		"interval": h.cfg.Interval.String(),
	})
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		h.Cycle(ctx)
		if err := h.cfg.Clock.Sleep(ctx, h.cfg.Interval); err != nil {
			h.log.InfoObj("harvester stopped", "harvester_stop", nil)
			return err
		}
	}
}

// Cycle fetches once and walks the articles in received order. Only published articles
// are recorded in the tracker, so a failed publish is retried on the next cycle.
func (h *Harvester) Cycle(ctx context.Context) Report {
	rep := Report{StartedAt: h.cfg.Clock.Now()}

	articles, err := h.cfg.Fetcher.Fetch(ctx, h.cfg.Provider)
	if err != nil {
		h.log.ErrorObj("fetch failed", "cycle_fetch_error", map[string]any{
			"provider": h.cfg.Provider.ID,
			"error":    err.Error(),
		})
		rep.FetchErr = err
		rep.FinishedAt = h.cfg.Clock.Now()
		return rep
	}
	rep.Fetched = len(articles)

	articles = h.enrichUnseen(ctx, articles)

	for _, a := range articles {
		if ctx.Err() != nil {
			break
		}
		rep.Results = append(rep.Results, h.handle(ctx, a))
	}

	rep.FinishedAt = h.cfg.Clock.Now()
	h.log.InfoObj("cycle complete", "cycle_done", map[string]any{
		"fetched":   rep.Fetched,
		"published": rep.Count(StatusPublished),
		"duplicate": rep.Count(StatusDuplicate),
		"filtered":  rep.Count(StatusFiltered),
		"failed":    rep.Count(StatusFailed),
	})
	return rep
}

// enrichUnseen hands only articles the tracker has not recorded to the enricher, so
// published pages are never scraped again. Order is preserved.
func (h *Harvester) enrichUnseen(ctx context.Context, articles []domain.Article) []domain.Article {
	if h.cfg.Enricher == nil {
		return articles
	}

	var (
		idx    []int
		unseen []domain.Article
	)
	for i, a := range articles {
		if !h.cfg.Tracker.Seen(a.ID) {
			idx = append(idx, i)
			unseen = append(unseen, a)
		}
	}
	if len(unseen) == 0 {
		return articles
	}

	enriched := h.cfg.Enricher.Enrich(ctx, h.cfg.Provider, unseen)
	out := make([]domain.Article, len(articles))
	copy(out, articles)
	for j, i := range idx {
		if j < len(enriched) {
			out[i] = enriched[j]
		}
	}
	return out
}

func (h *Harvester) handle(ctx context.Context, a domain.Article) ArticleResult {
	res := ArticleResult{ID: a.ID, Title: a.Title}

	if h.cfg.Tracker.Seen(a.ID) {
		res.Status = StatusDuplicate
		return res
	}
	if !h.cfg.Filter.Important(a.Title, a.Description) {
		res.Status = StatusFiltered
		return res
	}

	msg := h.cfg.Formatter.Format(ctx, a)
	res.Degraded = msg.Degraded

	_, err := h.cfg.Sender.SendMessage(ctx, h.cfg.ChannelID, msg.Text, telegram.ParseModeMarkdown)
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		h.log.ErrorObj("publish failed", "article_publish_error", map[string]any{
			"article_id": a.ID,
			"error":      err.Error(),
		})
	} else {
		h.cfg.Tracker.Record(a.ID)
		res.Status = StatusPublished
		h.log.InfoObj("article published", "article_published", map[string]any{
			"article_id": a.ID,
			"title":      a.Title,
			"degraded":   msg.Degraded,
		})
		h.mirror(ctx, a, msg)
	}

	if h.cfg.Pause > 0 {
		// Cancellation surfaces through ctx on the next iteration.
		_ = h.cfg.Clock.Sleep(ctx, h.cfg.Pause)
	}
	return res
}

func (h *Harvester) mirror(ctx context.Context, a domain.Article, msg format.Message) {
	if h.cfg.Mirror == nil {
		return
	}
	evt := publishers.NewArticleEvent(a, h.cfg.ChannelID, msg.Text, msg.Degraded, h.cfg.Clock.Now())
	if err := h.cfg.Mirror.Publish(ctx, evt); err != nil {
		h.log.WarnObj("mirror delivery incomplete", "article_mirror_error", map[string]any{
			"article_id": a.ID,
			"error":      err.Error(),
		})
	}
}
