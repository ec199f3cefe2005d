package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"google.golang.org/api/option"
)

// ErrPubSubProjectIDRequired is returned when the project ID is missing.
var ErrPubSubProjectIDRequired = errors.New("messaging: pubsub project id is required")

// PubSubConfig configures the Google Pub/Sub implementation.
type PubSubConfig struct {
	ProjectID     string
	ClientOptions []option.ClientOption
}

// PubSub is a messaging implementation backed by Google Pub/Sub.
type PubSub struct {
	client *pubsub.Client

	mu         sync.Mutex
	publishers map[string]*pubsub.Publisher
}

// NewPubSub constructs a Google Pub/Sub messaging client.
func NewPubSub(ctx context.Context, cfg PubSubConfig) (*PubSub, error) {
	if cfg.ProjectID == "" {
		return nil, ErrPubSubProjectIDRequired
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID, cfg.ClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("messaging: pubsub new client: %w", err)
	}

	return &PubSub{client: client, publishers: make(map[string]*pubsub.Publisher)}, nil
}

// Close stops publishers and closes the client.
func (p *PubSub) Close() error {
	p.mu.Lock()
	for _, pub := range p.publishers {
		pub.Stop()
	}
	p.publishers = make(map[string]*pubsub.Publisher)
	p.mu.Unlock()

	return p.client.Close()
}

func (p *PubSub) publisher(topic string) *pubsub.Publisher {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pub, ok := p.publishers[topic]; ok {
		return pub
	}

	pub := p.client.Publisher(topic)
	p.publishers[topic] = pub
	return pub
}

// Publish sends a message to a Pub/Sub topic. Headers become attributes.
func (p *PubSub) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}

	var attrs map[string]string
	if len(msg.Headers) > 0 {
		attrs = make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			attrs[h.Key] = string(h.Value)
		}
	}

	res := p.publisher(destination).Publish(ctx, &pubsub.Message{
		Data:       msg.Body,
		Attributes: attrs,
	})

	id, err := res.Get(ctx)
	if err != nil {
		return PublishResult{}, fmt.Errorf("messaging: pubsub publish: %w", err)
	}

	return PublishResult{MessageID: id, Topic: destination, Timestamp: time.Now()}, nil
}

// Consume receives from the subscription set with WithSubscription, or one named after source.
func (p *PubSub) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if source == "" {
		return ErrDestinationRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}

	co := newConsumeOptions(opts...)
	name := co.subscription
	if name == "" {
		name = source
	}

	sub := p.client.Subscriber(name)
	sub.ReceiveSettings.NumGoroutines = co.concurrency
	sub.ReceiveSettings.MaxOutstandingMessages = co.maxInFlight

	err := sub.Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		if err := deliver(ctx, DriverGooglePubSub, handler, &pubsubMessage{msg: m}, co.autoAck); err != nil {
			slog.WarnContext(ctx, "pubsub message not processed", "subscription", name, "id", m.ID, "error", err)
		}
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("messaging: pubsub receive: %w", err)
	}

	return nil
}

type pubsubMessage struct {
	responder
	msg *pubsub.Message
}

func (m *pubsubMessage) Body() []byte { return m.msg.Data }

func (m *pubsubMessage) Headers() []Header {
	headers := make([]Header, 0, len(m.msg.Attributes))
	for k, v := range m.msg.Attributes {
		headers = append(headers, Header{Key: k, Value: []byte(v)})
	}
	return headers
}

func (m *pubsubMessage) ID() string { return m.msg.ID }

func (m *pubsubMessage) Timestamp() time.Time { return m.msg.PublishTime }

func (m *pubsubMessage) Ack(context.Context) error {
	if m.claim() {
		m.msg.Ack()
	}
	return nil
}

func (m *pubsubMessage) Nack(context.Context) error {
	if m.claim() {
		m.msg.Nack()
	}
	return nil
}
