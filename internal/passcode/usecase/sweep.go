package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/passcode/internal/pkg/goerror"
)

// Sweep removes every record whose validity window has closed.
func (s *Usecase) Sweep(ctx context.Context) (int, error) {
	ctx, span := s.startSpan(ctx, "Sweep")
	defer span.End()

	n, err := s.store.Sweep(ctx, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo sweep passcodes", "error", err)
		return 0, goerror.NewServer(err)
	}

	if n > 0 {
		s.evicted.Add(ctx, int64(n))
	}

	return n, nil
}
