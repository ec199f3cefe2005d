package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/passcode/internal/passcode/usecase"
	"github.com/shandysiswandi/passcode/internal/pkg/instrument"
	"github.com/shandysiswandi/passcode/internal/pkg/messaging"
	"github.com/shandysiswandi/passcode/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, destination string, msg messaging.OutgoingMessage) (messaging.PublishResult, error) {
	args := m.Called(ctx, destination, msg)
	return args.Get(0).(messaging.PublishResult), args.Error(1)
}

func TestMessaging_SendCode(t *testing.T) {
	expiresAt := time.Date(2026, 1, 1, 12, 5, 0, 0, time.UTC)
	ctx := instrument.SetCorrelationID(context.Background(), "corr-1")

	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, event.PasscodeDeliveryDestination, mock.MatchedBy(func(msg messaging.OutgoingMessage) bool {
		var payload event.PasscodeDeliveryMessage
		if err := json.Unmarshal(msg.Body, &payload); err != nil {
			return false
		}
		return payload.Identifier == "a@b.com" &&
			payload.Name == "Ada" &&
			payload.Code == "482913" &&
			payload.ExpiresAt.Equal(expiresAt) &&
			messaging.HeaderValue(msg.Headers, "cID") == "corr-1"
	})).Return(messaging.PublishResult{}, nil)

	m := NewMessaging(pub, instrument.NewNoop())
	err := m.SendCode(ctx, usecase.Delivery{Identifier: "a@b.com", Name: "Ada", Code: "482913", ExpiresAt: expiresAt})
	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestMessaging_SendCode_PublishError(t *testing.T) {
	errBroker := errors.New("broker down")
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, event.PasscodeDeliveryDestination, mock.Anything).
		Return(messaging.PublishResult{}, errBroker)

	m := NewMessaging(pub, instrument.NewNoop())
	err := m.SendCode(context.Background(), usecase.Delivery{Identifier: "a@b.com", Code: "482913"})
	assert.ErrorIs(t, err, errBroker)
}
