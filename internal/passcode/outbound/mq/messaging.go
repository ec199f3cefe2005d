package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/passcode/internal/passcode/usecase"
	"github.com/shandysiswandi/passcode/internal/pkg/instrument"
	"github.com/shandysiswandi/passcode/internal/pkg/messaging"
	"github.com/shandysiswandi/passcode/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

// SendCode queues d for the mail consumer.
func (m *Messaging) SendCode(ctx context.Context, d usecase.Delivery) error {
	ctx, span := m.ins.Tracer("passcode.outbound.mq").Start(ctx, "SendCode")
	defer span.End()

	body, err := json.Marshal(event.PasscodeDeliveryMessage{
		Identifier: d.Identifier,
		Name:       d.Name,
		Code:       d.Code,
		ExpiresAt:  d.ExpiresAt,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, event.PasscodeDeliveryDestination, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(d.Identifier),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
