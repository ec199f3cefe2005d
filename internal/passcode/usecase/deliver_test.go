package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/passcode/internal/pkg/goerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUsecase_Deliver(t *testing.T) {
	errSend := errors.New("send failed")
	expiresAt := testStart.Add(5 * time.Minute)

	tests := []struct {
		name      string
		in        DeliverInput
		sendErr   error
		wantSend  bool
		wantErrFn func(error) bool
	}{
		{
			name:     "sends email",
			in:       DeliverInput{Identifier: "A@b.com", Name: "Ada", Code: "482913", ExpiresAt: expiresAt},
			wantSend: true,
		},
		{
			name: "drops phone identifier",
			in:   DeliverInput{Identifier: "+14155550100", Code: "482913", ExpiresAt: expiresAt},
		},
		{
			name: "drops expired code",
			in:   DeliverInput{Identifier: "a@b.com", Code: "482913", ExpiresAt: testStart.Add(-time.Second)},
		},
		{
			name:      "rejects malformed code",
			in:        DeliverInput{Identifier: "a@b.com", Code: "abc", ExpiresAt: expiresAt},
			wantErrFn: goerror.IsInvalidInput,
		},
		{
			name:      "mail failure",
			in:        DeliverInput{Identifier: "a@b.com", Code: "482913", ExpiresAt: expiresAt},
			sendErr:   errSend,
			wantSend:  true,
			wantErrFn: goerror.IsServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "482913")
			if tt.wantSend {
				f.repoMail.On("SendCode", mock.Anything, mock.MatchedBy(func(d Delivery) bool {
					return d.Identifier == "a@b.com" && d.Code == "482913"
				})).Return(tt.sendErr).Once()
			}

			err := f.uc.Deliver(context.Background(), tt.in)
			if tt.wantErrFn != nil {
				require.Error(t, err)
				assert.True(t, tt.wantErrFn(err))
			} else {
				assert.NoError(t, err)
			}

			if tt.wantSend {
				f.repoMail.AssertExpectations(t)
			} else {
				f.repoMail.AssertNotCalled(t, "SendCode", mock.Anything, mock.Anything)
			}
		})
	}
}
