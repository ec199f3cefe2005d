package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/passcode/internal/pkg/goerror"
)

type DeliverInput struct {
	Identifier string    `json:"identifier" validate:"required,max=254,email"`
	Name       string    `json:"name" validate:"max=100"`
	Code       string    `json:"code" validate:"required,numeric"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Deliver emails a queued code. Phone identifiers and codes that already
// expired are dropped.
func (s *Usecase) Deliver(ctx context.Context, in DeliverInput) error {
	ctx, span := s.startSpan(ctx, "Deliver")
	defer span.End()

	in.Identifier = normalizeIdentifier(in.Identifier)
	in.Name = strings.TrimSpace(in.Name)

	if strings.HasPrefix(in.Identifier, "+") {
		slog.WarnContext(ctx, "skip passcode delivery to phone identifier", "identifier", in.Identifier)
		return nil
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if !in.ExpiresAt.IsZero() && s.clock.Now().After(in.ExpiresAt) {
		slog.WarnContext(ctx, "skip delivery of expired passcode", "identifier", in.Identifier, "expires_at", in.ExpiresAt)
		return nil
	}

	if err := s.repoMail.SendCode(ctx, Delivery(in)); err != nil {
		slog.ErrorContext(ctx, "failed to repo send passcode email", "identifier", in.Identifier, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
