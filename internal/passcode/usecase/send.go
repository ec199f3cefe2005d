package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/passcode/internal/pkg/goerror"
)

type SendInput struct {
	Identifier string `json:"identifier" validate:"required,max=254,identifier"`
	Name       string `json:"name" validate:"max=100"`
}

// Send issues a code and hands it to the configured mailer. A dispatch failure
// fails the call; the issued record stays and the next request overwrites it.
func (s *Usecase) Send(ctx context.Context, in SendInput) (*RequestOutput, error) {
	ctx, span := s.startSpan(ctx, "Send")
	defer span.End()

	in.Identifier = normalizeIdentifier(in.Identifier)
	in.Name = strings.TrimSpace(in.Name)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	out, err := s.issue(ctx, in.Identifier)
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendCode(ctx, Delivery{
		Identifier: in.Identifier,
		Name:       in.Name,
		Code:       out.Code,
		ExpiresAt:  out.ExpiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to dispatch passcode", "identifier", in.Identifier, "error", err)
		return nil, goerror.NewServer(err)
	}

	return out, nil
}
