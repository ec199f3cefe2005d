package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"github.com/shandysiswandi/passcode/internal/passcode/usecase"
	"github.com/shandysiswandi/passcode/internal/pkg/goerror"
	"github.com/shandysiswandi/passcode/internal/pkg/idempotency"
	"github.com/shandysiswandi/passcode/internal/pkg/instrument"
	"github.com/shandysiswandi/passcode/internal/pkg/messaging"
	"github.com/shandysiswandi/passcode/internal/pkg/uid"
	"github.com/shandysiswandi/passcode/internal/shared/event"
)

const keyOfCorrelationID string = "cID"

type MQHandler struct {
	uc    uc
	uuid  uid.StringID
	guard idempotency.Guard // optional
	ins   instrument.Instrumentation
}

func (h *MQHandler) ensureCorrelationID(ctx context.Context, headers []messaging.Header) context.Context {
	if cID := messaging.HeaderValue(headers, keyOfCorrelationID); cID != "" {
		return instrument.SetCorrelationID(ctx, cID)
	}
	return instrument.SetCorrelationID(ctx, h.uuid.Generate())
}

// deliveryKey is unique per issued code; a re-request gets a new expiry.
func deliveryKey(p event.PasscodeDeliveryMessage) string {
	return "passcode-delivery:" + p.Identifier + ":" + strconv.FormatInt(p.ExpiresAt.UnixNano(), 10)
}

func (h *MQHandler) PasscodeDelivery(ctx context.Context, msg messaging.Message) error {
	ctx = h.ensureCorrelationID(ctx, msg.Headers())

	ctx, span := h.ins.Tracer("passcode.inbound.mq").Start(ctx, "PasscodeDelivery")
	defer span.End()

	slog.InfoContext(ctx, "consume: passcode delivery", "msg_id", msg.ID())

	var payload event.PasscodeDeliveryMessage
	if err := json.Unmarshal(msg.Body(), &payload); err != nil {
		slog.ErrorContext(ctx, "failed to parse message body of passcode delivery", "msg_id", msg.ID(), "error", err)
		return nil
	}

	deliver := func(ctx context.Context) error {
		return h.uc.Deliver(ctx, usecase.DeliverInput{
			Identifier: payload.Identifier,
			Name:       payload.Name,
			Code:       payload.Code,
			ExpiresAt:  payload.ExpiresAt,
		})
	}

	var err error
	if h.guard != nil {
		err = h.guard.Run(ctx, deliveryKey(payload), deliver)
	} else {
		err = deliver(ctx)
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, idempotency.ErrCompleted):
		slog.InfoContext(ctx, "skip duplicate passcode delivery", "identifier", payload.Identifier)
		return nil
	case goerror.IsInvalidInput(err):
		slog.ErrorContext(ctx, "drop invalid passcode delivery", "identifier", payload.Identifier, "error", err)
		return nil
	default:
		slog.ErrorContext(ctx, "failed to consume passcode delivery", "identifier", payload.Identifier, "error", err)
		return err
	}
}
