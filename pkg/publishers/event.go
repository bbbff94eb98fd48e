package publishers

import (
	"context"
	"errors"
	"time"

	"github.com/Adda-Baaj/bazaar-samachar/internal/domain"
	"github.com/Adda-Baaj/bazaar-samachar/internal/logger"
)

// Logger is the logging surface publishers write to.
type Logger = logger.Logger

func ensureLogger(l Logger) Logger { return logger.OrNop(l) }

// EventTypeArticlePublished is emitted after an article reached the channel.
const EventTypeArticlePublished = "article.published"

// Event is the JSON document mirrors receive for every published article.
type Event struct {
	Type        string    `json:"type"`
	ArticleID   string    `json:"article_id"`
	ProviderID  string    `json:"provider_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt string    `json:"published_at"`
	ChannelID   string    `json:"channel_id"`
	Message     string    `json:"message"`
	Degraded    bool      `json:"translation_degraded"`
	SentAt      time.Time `json:"sent_at"`
}

// NewArticleEvent describes an article that was just posted to channelID.
func NewArticleEvent(a domain.Article, channelID, message string, degraded bool, sentAt time.Time) Event {
	return Event{
		Type:        EventTypeArticlePublished,
		ArticleID:   a.ID,
		ProviderID:  a.Source,
		Title:       a.Title,
		Description: a.Description,
		URL:         a.URL,
		PublishedAt: a.PublishedAt,
		ChannelID:   channelID,
		Message:     message,
		Degraded:    degraded,
		SentAt:      sentAt.UTC(),
	}
}

// Publisher delivers events to one sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Fanout publishes every event to all of its publishers. A failing sink does not stop the others.
type Fanout struct {
	pubs []Publisher
	log  Logger
}

func NewFanout(pubs []Publisher, log Logger) *Fanout {
	return &Fanout{pubs: pubs, log: ensureLogger(log)}
}

// Len reports how many publishers are attached.
func (f *Fanout) Len() int {
	if f == nil {
		return 0
	}
	return len(f.pubs)
}

// Publish sends evt to every publisher and joins their errors.
func (f *Fanout) Publish(ctx context.Context, evt Event) error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, p := range f.pubs {
		if err := p.Publish(ctx, evt); err != nil {
			f.log.WarnObj("mirror publish failed", "mirror_publish_error", map[string]any{
				"publisher_id": p.ID(),
				"type":         p.Type(),
				"article_id":   evt.ArticleID,
				"error":        err.Error(),
			})
			errs = append(errs, err)
			continue
		}
		f.log.DebugObj("mirror publish ok", "mirror_publish", map[string]any{
			"publisher_id": p.ID(),
			"article_id":   evt.ArticleID,
		})
	}
	return errors.Join(errs...)
}
