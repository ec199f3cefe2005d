package inbound

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/passcode/internal/pkg/config"
	"github.com/shandysiswandi/passcode/internal/pkg/goroutine"
	"go.uber.org/atomic"
)

const defaultSweepInterval = time.Minute

// Sweeper evicts expired records on a fixed interval.
type Sweeper struct {
	uc       uc
	interval time.Duration
	total    atomic.Int64
}

func NewSweeper(uc uc, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &Sweeper{uc: uc, interval: interval}
}

// Run sweeps every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "passcode sweeper stopped", "total_evicted", s.total.Load())
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.uc.Sweep(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to sweep expired passcodes", "error", err)
		return
	}
	if n == 0 {
		return
	}

	total := s.total.Add(int64(n))
	slog.InfoContext(ctx, "swept expired passcodes", "evicted", n, "total_evicted", total)
}

// Total is the number of records evicted since start.
func (s *Sweeper) Total() int64 {
	return s.total.Load()
}

func RegisterSweeper(ctx context.Context, cfg config.Config, routine *goroutine.Manager, uc uc) *Sweeper {
	s := NewSweeper(uc, cfg.GetSecond("modules.passcode.sweep_interval_seconds"))

	if !routine.Go(ctx, s.Run) {
		slog.WarnContext(ctx, "passcode sweeper not started")
		return s
	}
	slog.InfoContext(ctx, "Running job for sweeping passcodes", "interval", s.interval.String())

	return s
}
