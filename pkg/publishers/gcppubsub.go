package publishers

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// pubsubTopic is the part of *pubsub.Topic the sender calls; publish blocks until the
// server assigns a message id.
type pubsubTopic interface {
	publish(ctx context.Context, msg *pubsub.Message) (string, error)
}

type gcpTopic struct{ t *pubsub.Topic }

func (g gcpTopic) publish(ctx context.Context, msg *pubsub.Message) (string, error) {
	return g.t.Publish(ctx, msg).Get(ctx)
}

type gcpPubSubSender struct {
	topic pubsubTopic
	log   Logger
}

func newGCPPubSubSender(ctx context.Context, cfg *GCPQueueConfig, log Logger) (queueSender, error) {
	if cfg == nil {
		return nil, errors.New("gcp pubsub configuration is missing")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &gcpPubSubSender{
		topic: gcpTopic{t: client.Topic(cfg.Topic)},
		log:   ensureLogger(log),
	}, nil
}

func (s *gcpPubSubSender) Send(ctx context.Context, evt Event) error {
	payload, attrs, err := encodeEvent(evt)
	if err != nil {
		return err
	}

	msgID, err := s.topic.publish(ctx, &pubsub.Message{Data: payload, Attributes: attrs})
	if err != nil {
		return fmt.Errorf("publish to pubsub: %w", err)
	}
	s.log.DebugObj("article mirrored to pubsub", "mirror_pubsub_delivery", map[string]any{
		"article_id": evt.ArticleID,
		"message_id": msgID,
	})
	return nil
}
