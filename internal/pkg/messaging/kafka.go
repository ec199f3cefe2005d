package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

var (
	// ErrKafkaBrokersRequired is returned when no brokers are configured.
	ErrKafkaBrokersRequired = errors.New("messaging: kafka brokers are required")
	// ErrKafkaGroupRequired is returned when consuming without a consumer group.
	ErrKafkaGroupRequired = errors.New("messaging: kafka group is required")
	// ErrKafkaClosed is returned when publishing after Close.
	ErrKafkaClosed = errors.New("messaging: kafka client is closed")
)

const defaultKafkaBatchTimeout = 10 * time.Millisecond

// KafkaConfig configures the Kafka implementation.
type KafkaConfig struct {
	// Brokers lists the bootstrap broker addresses.
	Brokers []string
	// BatchTimeout bounds how long the writer buffers before flushing. Defaults to 10ms.
	BatchTimeout time.Duration
}

// Kafka is a messaging implementation backed by Kafka topics.
type Kafka struct {
	brokers      []string
	batchTimeout time.Duration

	mu      sync.Mutex
	writers map[string]*kafka.Writer
	closed  bool
}

// NewKafka constructs a Kafka messaging client. Connections are opened lazily.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrKafkaBrokersRequired
	}

	bt := cfg.BatchTimeout
	if bt <= 0 {
		bt = defaultKafkaBatchTimeout
	}

	return &Kafka{
		brokers:      cfg.Brokers,
		batchTimeout: bt,
		writers:      make(map[string]*kafka.Writer),
	}, nil
}

// Close flushes and closes every writer.
func (k *Kafka) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil
	}
	k.closed = true

	var errs []error
	for topic, w := range k.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, fmt.Errorf("messaging: kafka close writer %s: %w", topic, err))
		}
	}
	k.writers = nil

	return errors.Join(errs...)
}

func (k *Kafka) writer(topic string) (*kafka.Writer, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil, ErrKafkaClosed
	}
	if w, ok := k.writers[topic]; ok {
		return w, nil
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(k.brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           k.batchTimeout,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	k.writers[topic] = w

	return w, nil
}

// Publish writes a message to a Kafka topic.
func (k *Kafka) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}

	w, err := k.writer(destination)
	if err != nil {
		return PublishResult{}, err
	}

	headers := make([]kafka.Header, 0, len(msg.Headers))
	for _, h := range msg.Headers {
		headers = append(headers, kafka.Header{Key: h.Key, Value: h.Value})
	}

	now := time.Now()
	if err := w.WriteMessages(ctx, kafka.Message{
		Key:     msg.Key,
		Value:   msg.Body,
		Headers: headers,
		Time:    now,
	}); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: kafka write: %w", err)
	}

	return PublishResult{Topic: destination, Timestamp: now}, nil
}

// Consume reads a topic as a member of the group set with WithGroup.
func (k *Kafka) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
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
	if co.group == "" {
		return ErrKafkaGroupRequired
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  k.brokers,
		GroupID:  co.group,
		Topic:    source,
		MaxBytes: 10e6,
	})

	msgCh := make(chan kafka.Message, co.maxInFlight)

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for m := range msgCh {
				if err := deliver(ctx, DriverKafka, handler, &kafkaMessage{reader: reader, msg: m}, co.autoAck); err != nil {
					slog.WarnContext(ctx, "kafka message not processed", "topic", m.Topic, "offset", m.Offset, "error", err)
				}
			}
		})
	}

	var fetchErr error
	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			fetchErr = err
			break
		}

		select {
		case msgCh <- m:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}

	close(msgCh)
	wg.Wait()
	closeErr := reader.Close()

	if ctx.Err() != nil {
		return closeErr
	}
	return errors.Join(fmt.Errorf("messaging: kafka fetch: %w", fetchErr), closeErr)
}

type kafkaMessage struct {
	responder
	reader *kafka.Reader
	msg    kafka.Message
}

func (m *kafkaMessage) Body() []byte { return m.msg.Value }

func (m *kafkaMessage) Headers() []Header {
	headers := make([]Header, 0, len(m.msg.Headers))
	for _, h := range m.msg.Headers {
		headers = append(headers, Header{Key: h.Key, Value: h.Value})
	}
	return headers
}

func (m *kafkaMessage) ID() string {
	return fmt.Sprintf("%s/%d/%d", m.msg.Topic, m.msg.Partition, m.msg.Offset)
}

func (m *kafkaMessage) Timestamp() time.Time { return m.msg.Time }

func (m *kafkaMessage) Ack(ctx context.Context) error {
	if !m.claim() {
		return nil
	}
	return m.reader.CommitMessages(ctx, m.msg)
}

// Nack leaves the offset uncommitted so the message is redelivered after a rebalance.
func (m *kafkaMessage) Nack(context.Context) error {
	m.claim()
	return nil
}
