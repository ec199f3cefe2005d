package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/shandysiswandi/passcode/internal/pkg/stacktrace"
)

var (
	// ErrDestinationRequired is returned when a topic/subject is empty.
	ErrDestinationRequired = errors.New("messaging: destination is required")
	// ErrHandlerRequired is returned when Consume is called with a nil handler.
	ErrHandlerRequired = errors.New("messaging: handler is required")
)

// Messaging is a broker-agnostic client that can publish and consume messages.
type Messaging interface {
	io.Closer

	Publisher
	Consumer
}

// Publisher publishes messages to a destination (topic/subject).
type Publisher interface {
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// Consumer consumes messages from a source and blocks until ctx is done.
type Consumer interface {
	Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error
}

// Handler processes a received message.
type Handler func(ctx context.Context, msg Message) error

// OutgoingMessage is a message to be published.
type OutgoingMessage struct {
	// Body is the message payload.
	Body []byte
	// Key is used by Kafka for partitioning.
	Key []byte
	// Headers travel as NATS/Kafka headers and Pub/Sub attributes. NSQ drops them.
	Headers []Header
}

// Header is a key/value pair used for message headers.
type Header struct {
	Key   string
	Value []byte
}

// PublishResult carries optional broker-specific publish metadata.
type PublishResult struct {
	MessageID string
	Topic     string
	Timestamp time.Time
}

// Message is a received message.
type Message interface {
	Body() []byte
	Headers() []Header
	ID() string
	Timestamp() time.Time

	// Ack acknowledges successful processing.
	Ack(ctx context.Context) error
	// Nack requests redelivery where the broker supports it.
	Nack(ctx context.Context) error
}

// HeaderValue returns the first header named key, or "".
func HeaderValue(headers []Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// responder guards a received message so that it is acked or nacked once.
type responder struct {
	done atomic.Bool
}

func (r *responder) claim() bool { return !r.done.Swap(true) }

func (r *responder) responded() bool { return r.done.Load() }

type receivedMessage interface {
	Message
	responded() bool
}

// deliver runs handler with panic recovery and applies auto-ack.
func deliver(ctx context.Context, kind string, handler Handler, msg receivedMessage, autoAck bool) error {
	herr := safeHandle(ctx, kind, handler, msg)

	if !autoAck || msg.responded() {
		return herr
	}
	if herr != nil {
		return errors.Join(herr, msg.Nack(ctx))
	}
	return msg.Ack(ctx)
}

// safeHandle converts a handler panic into an error so the message is nacked
// instead of killing the consumer worker.
func safeHandle(ctx context.Context, kind string, handler Handler, msg Message) (err error) {
	defer func() {
		rvr := recover()
		if rvr == nil {
			return
		}

		stack := debug.Stack()
		trace := any(string(stack))
		if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
			trace = paths
		}
		slog.ErrorContext(ctx, "panic in messaging handler", "kind", kind, "msg_id", msg.ID(), "panic", rvr, "stack", trace)

		err = fmt.Errorf("messaging: panic in %s handler: %v", kind, rvr)
	}()

	return handler(ctx, msg)
}
