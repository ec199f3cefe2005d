package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shandysiswandi/passcode/internal/passcode/entity"
	"github.com/shandysiswandi/passcode/internal/pkg/clock"
	"github.com/shandysiswandi/passcode/internal/pkg/goerror"
	"github.com/shandysiswandi/passcode/internal/pkg/instrument"
	"github.com/shandysiswandi/passcode/internal/pkg/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUsecase_Request(t *testing.T) {
	f := newFixture(t, "482913")
	ctx := context.Background()

	out, err := f.uc.Request(ctx, RequestInput{Identifier: "  A@B.com "})
	require.NoError(t, err)
	assert.Equal(t, "482913", out.Code)
	assert.Equal(t, testStart.Add(entity.CodeTTL), out.ExpiresAt)

	rec, err := f.store.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "482913", rec.Code)
	assert.Zero(t, rec.AttemptsUsed)
	assert.Equal(t, testStart, rec.CreatedAt)
}

func TestUsecase_Request_PhoneIdentifier(t *testing.T) {
	f := newFixture(t, "000123")

	out, err := f.uc.Request(context.Background(), RequestInput{Identifier: "+14155550100"})
	require.NoError(t, err)
	assert.Equal(t, "000123", out.Code)
}

func TestUsecase_Request_InvalidInput(t *testing.T) {
	f := newFixture(t, "482913")

	tests := []struct {
		name       string
		identifier string
	}{
		{name: "empty", identifier: ""},
		{name: "blank", identifier: "   "},
		{name: "not an address", identifier: "not-an-address"},
		{name: "phone without plus", identifier: "14155550100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := f.uc.Request(context.Background(), RequestInput{Identifier: tt.identifier})
			assert.Nil(t, out)
			assert.True(t, goerror.IsInvalidInput(err))
		})
	}

	assert.Zero(t, f.store.Len())
}

func TestUsecase_Request_ReplacesActiveCode(t *testing.T) {
	f := newFixture(t, "111111")
	ctx := context.Background()

	_, err := f.uc.Request(ctx, RequestInput{Identifier: "a@b.com"})
	require.NoError(t, err)

	out, err := f.uc.Verify(ctx, VerifyInput{Identifier: "a@b.com", Code: "000000"})
	require.NoError(t, err)
	require.Equal(t, entity.VerifyStatusMismatch, out.Status)

	gen, err := otp.NewStatic("222222", entity.CodeLength)
	require.NoError(t, err)
	f.uc.generator = gen

	_, err = f.uc.Request(ctx, RequestInput{Identifier: "a@b.com"})
	require.NoError(t, err)

	out, err = f.uc.Verify(ctx, VerifyInput{Identifier: "a@b.com", Code: "111111"})
	require.NoError(t, err)
	assert.Equal(t, entity.VerifyStatusMismatch, out.Status)
	assert.Equal(t, 2, out.AttemptsRemaining)

	out, err = f.uc.Verify(ctx, VerifyInput{Identifier: "a@b.com", Code: "222222"})
	require.NoError(t, err)
	assert.Equal(t, entity.VerifyStatusSuccess, out.Status)
}

func TestUsecase_Request_Failures(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name  string
		setup func(s *mockStore, g *mockGenerator)
	}{
		{
			name: "lock fails",
			setup: func(s *mockStore, _ *mockGenerator) {
				s.On("Lock", mock.Anything, "a@b.com").Return(nil, goerror.ErrLockTimeout)
			},
		},
		{
			name: "generator fails",
			setup: func(s *mockStore, g *mockGenerator) {
				s.On("Lock", mock.Anything, "a@b.com").Return(noopUnlock, nil)
				g.On("Generate").Return("", errBoom)
			},
		},
		{
			name: "put fails",
			setup: func(s *mockStore, g *mockGenerator) {
				s.On("Lock", mock.Anything, "a@b.com").Return(noopUnlock, nil)
				g.On("Generate").Return("123456", nil)
				s.On("Put", mock.Anything, mock.AnythingOfType("entity.Record")).Return(errBoom)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := new(mockStore)
			g := new(mockGenerator)
			tt.setup(s, g)

			uc := New(Dependency{
				Store:      s,
				Generator:  g,
				Clock:      clock.NewFake(testStart),
				Validator:  newValidator(t),
				Instrument: instrument.NewNoop(),
			})

			out, err := uc.Request(context.Background(), RequestInput{Identifier: "a@b.com"})
			assert.Nil(t, out)
			assert.True(t, goerror.IsServer(err))
			s.AssertExpectations(t)
			g.AssertExpectations(t)
		})
	}
}
