package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/passcode/internal/passcode/entity"
	"github.com/shandysiswandi/passcode/internal/pkg/goerror"
)

type RequestInput struct {
	Identifier string `json:"identifier" validate:"required,max=254,identifier"`
}

type RequestOutput struct {
	Code      string
	ExpiresAt time.Time
}

// Request issues a fresh code for the identifier, replacing any active one.
// Delivering the code is left to the caller.
func (s *Usecase) Request(ctx context.Context, in RequestInput) (*RequestOutput, error) {
	ctx, span := s.startSpan(ctx, "Request")
	defer span.End()

	in.Identifier = normalizeIdentifier(in.Identifier)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	return s.issue(ctx, in.Identifier)
}

func (s *Usecase) issue(ctx context.Context, identifier string) (*RequestOutput, error) {
	unlock, err := s.store.Lock(ctx, identifier)
	if err != nil {
		slog.ErrorContext(ctx, "failed to lock identifier for request", "identifier", identifier, "error", err)
		return nil, goerror.NewServer(err)
	}
	defer unlock()

	code, err := s.generator.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate passcode", "identifier", identifier, "error", err)
		return nil, goerror.NewServer(err)
	}

	rec := entity.NewRecord(identifier, code, s.clock.Now())
	if err := s.store.Put(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to repo put passcode", "identifier", identifier, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.issued.Add(ctx, 1)
	slog.InfoContext(ctx, "passcode issued", "identifier", identifier, "expires_at", rec.ExpiresAt)

	return &RequestOutput{Code: code, ExpiresAt: rec.ExpiresAt}, nil
}
