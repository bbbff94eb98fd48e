package publishers

import (
	"context"
	"encoding/json"
	"fmt"
)

// queueSender hides the provider SDK behind a single call.
type queueSender interface {
	Send(ctx context.Context, evt Event) error
}

// queuePublisher hands events to a cloud queue or topic.
type queuePublisher struct {
	id       string
	typ      string
	provider string
	sender   queueSender
}

func newQueuePublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.Queue == nil {
		return nil, fmt.Errorf("publisher %q missing queue configuration", cfg.ID)
	}

	var (
		sender queueSender
		err    error
	)
	switch cfg.Queue.Provider {
	case QueueProviderAWSSQS:
		sender, err = newAWSSQSSender(ctx, cfg.Queue.AWS, log)
	case QueueProviderAWSSNS:
		sender, err = newAWSSNSSender(ctx, cfg.Queue.SNS, log)
	case QueueProviderGCP:
		sender, err = newGCPPubSubSender(ctx, cfg.Queue.GCP, log)
	default:
		err = fmt.Errorf("queue provider %q is not supported", cfg.Queue.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &queuePublisher{
		id:       cfg.ID,
		typ:      cfg.Type,
		provider: cfg.Queue.Provider,
		sender:   sender,
	}, nil
}

func (p *queuePublisher) ID() string   { return p.id }
func (p *queuePublisher) Type() string { return p.typ }

func (p *queuePublisher) Publish(ctx context.Context, evt Event) error {
	if err := p.sender.Send(ctx, evt); err != nil {
		return fmt.Errorf("queue provider %s: %w", p.provider, err)
	}
	return nil
}

// encodeEvent returns the JSON body plus the routing attributes every queue message carries.
func encodeEvent(evt Event) ([]byte, map[string]string, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal event: %w", err)
	}
	attrs := map[string]string{
		"event_type":  evt.Type,
		"article_id":  evt.ArticleID,
		"provider_id": evt.ProviderID,
	}
	for k, v := range attrs {
		if v == "" {
			delete(attrs, k)
		}
	}
	return payload, attrs, nil
}
