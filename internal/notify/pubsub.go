package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// PubSubNotifier publishes notifications to a Pub/Sub topic for push
// delivery by downstream consumers.
type PubSubNotifier struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topic     string
	logger    zerolog.Logger
}

// PubSubNotifierConfig holds configuration for the Pub/Sub notifier.
type PubSubNotifierConfig struct {
	ProjectID string
	TopicID   string
	Logger    zerolog.Logger
}

// NewPubSubNotifier creates a Pub/Sub client and publisher for the topic.
func NewPubSubNotifier(ctx context.Context, cfg PubSubNotifierConfig) (*PubSubNotifier, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &PubSubNotifier{
		client:    client,
		publisher: client.Publisher(cfg.TopicID),
		topic:     cfg.TopicID,
		logger:    cfg.Logger,
	}, nil
}

// Name returns the notifier name.
func (p *PubSubNotifier) Name() string {
	return "pubsub"
}

// Notify publishes n as JSON and waits for the server ack.
func (p *PubSubNotifier) Notify(ctx context.Context, n Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"type":     string(n.Kind),
			"severity": string(n.Severity),
		},
	})

	id, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publishing notification: %w", err)
	}

	p.logger.Debug().
		Str("topic", p.topic).
		Str("message_id", id).
		Str("notification_id", n.ID).
		Msg("notification published")
	return nil
}

// Close flushes pending messages and closes the client.
func (p *PubSubNotifier) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}
