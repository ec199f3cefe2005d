package messaging

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Driver names accepted by NewFromDriver.
const (
	DriverNSQ          = "nsq"
	DriverNATS         = "nats"
	DriverKafka        = "kafka"
	DriverGooglePubSub = "google-pubsub"
)

// ErrUnknownDriver indicates an unsupported messaging driver.
var ErrUnknownDriver = errors.New("messaging: unknown driver")

// FactoryOptions carries the per-backend config; only the selected one is read.
type FactoryOptions struct {
	NSQ    NSQConfig
	Kafka  KafkaConfig
	NATS   NATSConfig
	PubSub PubSubConfig
}

type constructor func(ctx context.Context, opts FactoryOptions) (Messaging, error)

var constructors = map[string]constructor{
	DriverNSQ: func(_ context.Context, opts FactoryOptions) (Messaging, error) {
		return NewNSQ(opts.NSQ)
	},
	DriverNATS: func(_ context.Context, opts FactoryOptions) (Messaging, error) {
		return NewNATS(opts.NATS)
	},
	DriverKafka: func(_ context.Context, opts FactoryOptions) (Messaging, error) {
		return NewKafka(opts.Kafka)
	},
	DriverGooglePubSub: func(ctx context.Context, opts FactoryOptions) (Messaging, error) {
		return NewPubSub(ctx, opts.PubSub)
	},
}

// Drivers lists the accepted driver names in sorted order.
func Drivers() []string {
	names := lo.Keys(constructors)
	slices.Sort(names)
	return names
}

// NewFromDriver constructs the Messaging backend registered under driver.
// Surrounding whitespace and letter case are ignored.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Messaging, error) {
	build, ok := constructors[strings.ToLower(strings.TrimSpace(driver))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownDriver, driver, strings.Join(Drivers(), ", "))
	}
	return build(ctx, opts)
}
