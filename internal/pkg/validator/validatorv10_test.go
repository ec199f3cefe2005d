package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contactInput struct {
	Identifier  string `json:"identifier" validate:"required,max=254,identifier"`
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,max=5"`
	Note        string `validate:"omitempty,max=3"`
}

func TestV10Validator_Validate(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	tests := []struct {
		name    string
		in      contactInput
		wantKey string
		wantMsg string
	}{
		{name: "email", in: contactInput{Identifier: "a@b.com"}},
		{name: "e164", in: contactInput{Identifier: "+6281234567890"}},
		{
			name:    "empty",
			in:      contactInput{},
			wantKey: "identifier",
			wantMsg: "identifier is a required field",
		},
		{
			name:    "not a contact",
			in:      contactInput{Identifier: "not-a-contact"},
			wantKey: "identifier",
			wantMsg: "identifier must be an email address or an E.164 phone number",
		},
		{
			name:    "phone without plus",
			in:      contactInput{Identifier: "6281234567890"},
			wantKey: "identifier",
			wantMsg: "identifier must be an email address or an E.164 phone number",
		},
		{
			name:    "json key",
			in:      contactInput{Identifier: "a@b.com", DisplayName: "too long name"},
			wantKey: "display_name",
		},
		{
			name:    "untagged field lowercased",
			in:      contactInput{Identifier: "a@b.com", Note: "longer"},
			wantKey: "note",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			if tt.wantKey == "" {
				assert.NoError(t, err)
				return
			}

			var verr V10ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Values(), tt.wantKey)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, verr.Values()[tt.wantKey])
			}
			assert.Contains(t, verr.Error(), tt.wantKey)
		})
	}
}
