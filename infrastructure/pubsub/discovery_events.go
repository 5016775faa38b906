package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"viral-clips/infrastructure/logger"

	"cloud.google.com/go/pubsub"
)

// NewPubSub creates a Pub/Sub client for the configured project.
func NewPubSub(ctx context.Context, projectID string) (*pubsub.Client, error) {
	return pubsub.NewClient(ctx, projectID)
}

// DiscoveryEvent announces that a discovery result set was fetched fresh
// from upstream, so downstream aggregators can react without polling.
type DiscoveryEvent struct {
	Fingerprint string    `json:"fingerprint"`
	Query       string    `json:"query"`
	VideoCount  int       `json:"video_count"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// IDiscoveryEvents publishes discovery refresh events.
type IDiscoveryEvents interface {
	PublishRefresh(ctx context.Context, event DiscoveryEvent)
}

// DiscoveryEvents publishes to a single configured topic, fire-and-forget:
// a broker outage never fails a discovery request.
type DiscoveryEvents struct {
	client *pubsub.Client
	topic  string
}

func NewDiscoveryEvents(client *pubsub.Client, topic string) IDiscoveryEvents {
	if topic == "" {
		topic = "discovery-refresh"
	}
	return &DiscoveryEvents{client: client, topic: topic}
}

func (p *DiscoveryEvents) PublishRefresh(ctx context.Context, event DiscoveryEvent) {
	if p.client == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed to encode discovery event")
		return
	}

	topic := p.client.Topic(p.topic)
	result := topic.Publish(ctx, &pubsub.Message{Data: payload})
	go func() {
		waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := result.Get(waitCtx); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Discovery event publish failed")
		}
	}()
}
