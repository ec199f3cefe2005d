package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shandysiswandi/passcode/internal/passcode/entity"
	"github.com/shandysiswandi/passcode/internal/passcode/outbound/store"
	"github.com/shandysiswandi/passcode/internal/pkg/clock"
	"github.com/shandysiswandi/passcode/internal/pkg/instrument"
	"github.com/shandysiswandi/passcode/internal/pkg/otp"
	"github.com/shandysiswandi/passcode/internal/pkg/validator"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

type mockStore struct{ mock.Mock }

func (m *mockStore) Lock(ctx context.Context, identifier string) (func(), error) {
	args := m.Called(ctx, identifier)
	unlock, _ := args.Get(0).(func())
	return unlock, args.Error(1)
}

func (m *mockStore) Put(ctx context.Context, rec entity.Record) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockStore) Get(ctx context.Context, identifier string) (*entity.Record, error) {
	args := m.Called(ctx, identifier)
	rec, _ := args.Get(0).(*entity.Record)
	return rec, args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, identifier string) error {
	return m.Called(ctx, identifier).Error(0)
}

func (m *mockStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendCode(ctx context.Context, d Delivery) error {
	return m.Called(ctx, d).Error(0)
}

type mockGenerator struct{ mock.Mock }

func (m *mockGenerator) Generate() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func newValidator(t *testing.T) validator.Validator {
	t.Helper()
	v, err := validator.NewV10Validator()
	require.NoError(t, err)
	return v
}

type fixture struct {
	uc       *Usecase
	store    *store.Memory
	clock    *clock.Fake
	mailer   *mockMailer
	repoMail *mockMailer
}

// newFixture wires the usecase to an in-memory store, a fake clock and a generator fixed to code.
func newFixture(t *testing.T, code string) *fixture {
	t.Helper()

	gen, err := otp.NewStatic(code, entity.CodeLength)
	require.NoError(t, err)

	f := &fixture{
		store:    store.NewMemory(),
		clock:    clock.NewFake(testStart),
		mailer:   new(mockMailer),
		repoMail: new(mockMailer),
	}
	f.uc = New(Dependency{
		Store:      f.store,
		Generator:  gen,
		Mailer:     f.mailer,
		RepoMail:   f.repoMail,
		Clock:      f.clock,
		Validator:  newValidator(t),
		Instrument: instrument.NewNoop(),
	})

	return f
}

func noopUnlock() {}
