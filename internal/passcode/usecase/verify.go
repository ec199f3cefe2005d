package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/passcode/internal/passcode/entity"
	"github.com/shandysiswandi/passcode/internal/pkg/goerror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type VerifyInput struct {
	Identifier string `json:"identifier" validate:"required,max=254"`
	Code       string `json:"code"`
}

type VerifyOutput struct {
	Status            entity.VerifyStatus
	AttemptsRemaining int
}

// Message is the user facing text for a failed verification.
func (o VerifyOutput) Message() string {
	switch o.Status {
	case entity.VerifyStatusSuccess:
		return ""
	case entity.VerifyStatusMismatch:
		return fmt.Sprintf("Incorrect code, %d attempts left", o.AttemptsRemaining)
	default:
		return "Please request a new code"
	}
}

// Verify checks code against the active record of the identifier. Every outcome
// other than an infrastructure failure is reported through VerifyOutput.Status.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	in.Identifier = normalizeIdentifier(in.Identifier)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	unlock, err := s.store.Lock(ctx, in.Identifier)
	if err != nil {
		slog.ErrorContext(ctx, "failed to lock identifier for verify", "identifier", in.Identifier, "error", err)
		return nil, goerror.NewServer(err)
	}
	defer unlock()

	out, err := s.verify(ctx, in)
	if err != nil {
		return nil, err
	}

	s.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("status", out.Status.String())))
	span.SetAttributes(attribute.String("passcode.status", out.Status.String()))

	return out, nil
}

// verify must run under the identifier lock.
func (s *Usecase) verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	rec, err := s.store.Get(ctx, in.Identifier)
	if errors.Is(err, goerror.ErrNotFound) {
		return &VerifyOutput{Status: entity.VerifyStatusAbsent}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get passcode", "identifier", in.Identifier, "error", err)
		return nil, goerror.NewServer(err)
	}

	if rec.Consumed {
		return &VerifyOutput{Status: entity.VerifyStatusAbsent}, nil
	}

	if rec.IsExpired(s.clock.Now()) {
		if err := s.store.Delete(ctx, in.Identifier); err != nil {
			slog.ErrorContext(ctx, "failed to repo delete expired passcode", "identifier", in.Identifier, "error", err)
			return nil, goerror.NewServer(err)
		}
		return &VerifyOutput{Status: entity.VerifyStatusExpired}, nil
	}

	if rec.IsExhausted() {
		slog.WarnContext(ctx, "verify on exhausted passcode", "identifier", in.Identifier)
		return &VerifyOutput{Status: entity.VerifyStatusExhausted}, nil
	}

	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(in.Code)) == 1 {
		if err := s.store.Delete(ctx, in.Identifier); err != nil {
			slog.ErrorContext(ctx, "failed to repo delete verified passcode", "identifier", in.Identifier, "error", err)
			return nil, goerror.NewServer(err)
		}
		return &VerifyOutput{Status: entity.VerifyStatusSuccess}, nil
	}

	rec.AttemptsUsed++
	if err := s.store.Put(ctx, *rec); err != nil {
		slog.ErrorContext(ctx, "failed to repo put passcode attempt", "identifier", in.Identifier, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &VerifyOutput{
		Status:            entity.VerifyStatusMismatch,
		AttemptsRemaining: rec.AttemptsRemaining(),
	}, nil
}
