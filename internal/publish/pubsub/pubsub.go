// Package pubsub publishes pipeline events to Google Cloud Pub/Sub.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
)

// Publisher sends JSON events to topics within one project. Authentication
// uses Application Default Credentials.
type Publisher struct {
	client    *pubsub.Client
	projectID string
}

func fullTopicName(projectID, topicID string) string {
	return fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
}

// New creates a Pub/Sub client and verifies the given topic exists, failing
// fast on startup misconfiguration.
func New(ctx context.Context, projectID, topicID string) (*Publisher, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	topic, err := client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{
		Topic: fullTopicName(projectID, topicID),
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("getting pubsub topic %q: %w", topicID, err)
	}
	if topic.State != pubsubpb.Topic_ACTIVE {
		_ = client.Close()
		return nil, fmt.Errorf("pubsub topic %q is not active", topicID)
	}

	return &Publisher{client: client, projectID: projectID}, nil
}

// Publish marshals the payload as JSON, sends it and waits for the server
// acknowledgement so callers get a real message ID back.
func (p *Publisher) Publish(ctx context.Context, topic string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding event payload: %w", err)
	}

	publisher := p.client.Publisher(fullTopicName(p.projectID, topic))
	result := publisher.Publish(ctx, &pubsub.Message{Data: data})

	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publishing to %q: %w", topic, err)
	}
	return id, nil
}

func (p *Publisher) Close() error {
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("closing pubsub client: %w", err)
	}
	return nil
}
