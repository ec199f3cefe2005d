package inbound

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/passcode/internal/passcode/usecase"
	"github.com/shandysiswandi/passcode/internal/pkg/goerror"
	"github.com/shandysiswandi/passcode/internal/pkg/idempotency"
	"github.com/shandysiswandi/passcode/internal/pkg/instrument"
	"github.com/shandysiswandi/passcode/internal/pkg/messaging"
	"github.com/shandysiswandi/passcode/internal/pkg/uid"
	"github.com/shandysiswandi/passcode/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUC struct{ mock.Mock }

func (m *mockUC) Deliver(ctx context.Context, in usecase.DeliverInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *mockUC) Sweep(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockGuard struct{ mock.Mock }

func (m *mockGuard) Run(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	args := m.Called(ctx, key)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

type testMessage struct {
	body    []byte
	headers []messaging.Header
}

func (m *testMessage) Body() []byte                { return m.body }
func (m *testMessage) Headers() []messaging.Header { return m.headers }
func (m *testMessage) ID() string                  { return "msg-1" }
func (m *testMessage) Timestamp() time.Time        { return time.Time{} }
func (m *testMessage) Ack(context.Context) error   { return nil }
func (m *testMessage) Nack(context.Context) error  { return nil }

func TestSweeper_Run(t *testing.T) {
	m := new(mockUC)
	m.On("Sweep", mock.Anything).Return(2, nil).Once()
	m.On("Sweep", mock.Anything).Return(0, errors.New("boom")).Once()
	m.On("Sweep", mock.Anything).Return(1, nil)

	s := NewSweeper(m, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return s.Total() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestNewSweeper_DefaultInterval(t *testing.T) {
	s := NewSweeper(new(mockUC), 0)
	assert.Equal(t, time.Minute, s.interval)
}

func deliveryBody(t *testing.T, p event.PasscodeDeliveryMessage) []byte {
	t.Helper()
	b, err := json.Marshal(p)
	require.NoError(t, err)
	return b
}

func TestMQHandler_PasscodeDelivery(t *testing.T) {
	expiresAt := time.Date(2026, 1, 1, 12, 5, 0, 0, time.UTC)
	payload := event.PasscodeDeliveryMessage{Identifier: "a@b.com", Name: "Ada", Code: "482913", ExpiresAt: expiresAt}
	wantIn := usecase.DeliverInput{Identifier: "a@b.com", Name: "Ada", Code: "482913", ExpiresAt: expiresAt}
	errSMTP := errors.New("smtp down")

	tests := []struct {
		name     string
		body     []byte
		guardErr error
		ucErr    error
		callUC   bool
		wantErr  error
	}{
		{name: "delivers", callUC: true},
		{name: "bad body is dropped", body: []byte("{not json")},
		{name: "duplicate is skipped", guardErr: idempotency.ErrCompleted},
		{name: "in progress is retried", guardErr: idempotency.ErrInProgress, wantErr: idempotency.ErrInProgress},
		{name: "invalid input is dropped", callUC: true, ucErr: goerror.NewInvalidInput(errors.New("bad code"))},
		{name: "send failure is retried", callUC: true, ucErr: errSMTP, wantErr: errSMTP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(mockUC)
			g := new(mockGuard)

			body := tt.body
			if body == nil {
				body = deliveryBody(t, payload)
				g.On("Run", mock.Anything, deliveryKey(payload)).Return(tt.guardErr)
			}
			if tt.callUC {
				m.On("Deliver", mock.Anything, wantIn).Return(tt.ucErr)
			}

			h := &MQHandler{uc: m, uuid: uid.NewUUID(), guard: g, ins: instrument.NewNoop()}
			err := h.PasscodeDelivery(context.Background(), &testMessage{body: body})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			m.AssertExpectations(t)
			g.AssertExpectations(t)
		})
	}
}

func TestMQHandler_PasscodeDelivery_NoGuard(t *testing.T) {
	m := new(mockUC)
	m.On("Deliver", mock.MatchedBy(func(ctx context.Context) bool {
		return instrument.GetCorrelationID(ctx) == "corr-1"
	}), mock.AnythingOfType("usecase.DeliverInput")).Return(nil)

	h := &MQHandler{uc: m, uuid: uid.NewUUID(), ins: instrument.NewNoop()}
	err := h.PasscodeDelivery(context.Background(), &testMessage{
		body:    deliveryBody(t, event.PasscodeDeliveryMessage{Identifier: "a@b.com", Code: "482913"}),
		headers: []messaging.Header{{Key: "cID", Value: []byte("corr-1")}},
	})
	require.NoError(t, err)
	m.AssertExpectations(t)
}

func TestMQHandler_EnsureCorrelationID(t *testing.T) {
	h := &MQHandler{uuid: uid.Static("generated")}

	ctx := h.ensureCorrelationID(context.Background(), nil)
	assert.Equal(t, "generated", instrument.GetCorrelationID(ctx))

	ctx = h.ensureCorrelationID(context.Background(), []messaging.Header{{Key: "cID", Value: []byte("x")}})
	assert.Equal(t, "x", instrument.GetCorrelationID(ctx))
}
