package passcode

import (
	"context"
	"testing"

	"github.com/shandysiswandi/passcode/internal/passcode/entity"
	"github.com/shandysiswandi/passcode/internal/passcode/usecase"
	"github.com/shandysiswandi/passcode/internal/pkg/clock"
	"github.com/shandysiswandi/passcode/internal/pkg/config"
	"github.com/shandysiswandi/passcode/internal/pkg/goroutine"
	"github.com/shandysiswandi/passcode/internal/pkg/instrument"
	"github.com/shandysiswandi/passcode/internal/pkg/mail"
	"github.com/shandysiswandi/passcode/internal/pkg/otp"
	"github.com/shandysiswandi/passcode/internal/pkg/uid"
	"github.com/shandysiswandi/passcode/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDependency(t *testing.T, yaml string) Dependency {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	gen, err := otp.NewStatic("482913", entity.CodeLength)
	require.NoError(t, err)

	return Dependency{
		Config:     cfg,
		Instrument: instrument.NewNoop(),
		UUID:       uid.NewUUID(),
		Clock:      clock.New(),
		Validator:  v,
		Generator:  gen,
		Goroutine:  goroutine.NewManager(4),
		Mail:       mail.NewLog("no-reply@example.com"),
	}
}

func TestNew_MemoryDirect(t *testing.T) {
	dep := newDependency(t, "store:\n  driver: memory\n")
	ctx, cancel := context.WithCancel(context.Background())
	dep.Ctx = ctx

	uc, err := New(dep)
	require.NoError(t, err)

	out, err := uc.Send(ctx, usecase.SendInput{Identifier: "a@b.com", Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "482913", out.Code)

	res, err := uc.Verify(ctx, usecase.VerifyInput{Identifier: "a@b.com", Code: "482913"})
	require.NoError(t, err)
	assert.Equal(t, entity.VerifyStatusSuccess, res.Status)

	cancel()
	assert.NoError(t, dep.Goroutine.Wait())
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{name: "unknown store", yaml: "store:\n  driver: etcd\n", wantErr: ErrUnknownStoreDriver},
		{name: "redis without client", yaml: "store:\n  driver: redis\n", wantErr: ErrStoreConnRequired},
		{name: "postgres without pool", yaml: "store:\n  driver: postgres\n", wantErr: ErrStoreConnRequired},
		{name: "queue without messaging", yaml: "modules:\n  passcode:\n    delivery: queue\n", wantErr: ErrMessagingRequired},
		{name: "unknown delivery", yaml: "modules:\n  passcode:\n    delivery: pigeon\n", wantErr: ErrUnknownDeliveryMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(newDependency(t, tt.yaml))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNew_MissingDependency(t *testing.T) {
	dep := newDependency(t, "")
	dep.Mail = nil

	_, err := New(dep)
	assert.Error(t, err)
}
