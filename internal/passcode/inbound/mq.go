package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/passcode/internal/pkg/config"
	"github.com/shandysiswandi/passcode/internal/pkg/goroutine"
	"github.com/shandysiswandi/passcode/internal/pkg/idempotency"
	"github.com/shandysiswandi/passcode/internal/pkg/instrument"
	"github.com/shandysiswandi/passcode/internal/pkg/messaging"
	"github.com/shandysiswandi/passcode/internal/pkg/uid"
	"github.com/shandysiswandi/passcode/internal/shared/event"
)

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Consumer,
	uuid uid.StringID,
	guard idempotency.Guard,
	uc uc,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, guard: guard, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.passcode.consumer_names")
	concurrency := cfg.GetInt("modules.passcode.consumer_concurrency")

	var consumers = []struct {
		name    string
		topic   string // destination where publisher sent message
		group   string // nsq channel, nats queue group, kafka group, pubsub subscription
		handler messaging.Handler
	}{
		{
			name:    event.PasscodeDeliveryConsumerMailer,
			topic:   event.PasscodeDeliveryDestination,
			group:   event.PasscodeDeliveryConsumerMailer,
			handler: mqHandler.PasscodeDelivery,
		},
	}

	for _, consumer := range consumers {
		if !slices.Contains(enableConsumerNames, consumer.name) {
			continue
		}

		routine.Go(ctx, func(pCtx context.Context) error {
			slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
			return messenger.Consume(pCtx,
				consumer.topic,
				consumer.handler,
				messaging.WithChannel(consumer.group),
				messaging.WithQueueGroup(consumer.group),
				messaging.WithGroup(consumer.group),
				messaging.WithSubscription(consumer.group),
				messaging.WithAutoAck(true),
				messaging.WithConcurrency(concurrency),
				messaging.WithMaxInFlight(concurrency),
			)
		})
	}
}
