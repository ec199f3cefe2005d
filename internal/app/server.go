package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// Start waits for a termination signal in the background and returns a
// channel closed on shutdown. Background jobs are already running.
func (a *App) Start() <-chan struct{} {
	terminateChan := make(chan struct{})

	slog.Info("passcode service started",
		"store", a.config.GetString("store.driver"),
		"delivery", a.config.GetString("modules.passcode.delivery"),
	)

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(sigint)

		select {
		case <-sigint:
		case <-a.ctx.Done():
		}

		if a.cancel != nil {
			a.cancel()
		}

		close(terminateChan)

		slog.Info("application gracefully shutdown")
	}()

	return terminateChan
}

// Stop cancels background jobs, waits for them and closes resources.
func (a *App) Stop(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}

	slog.InfoContext(ctx, "waiting for all goroutine to finish")
	if err := a.goroutine.Wait(); err != nil {
		slog.ErrorContext(ctx, "error from goroutines executions", "error", err)
	}
	slog.InfoContext(ctx, "all goroutines have finished successfully")

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", closer.name, "error", err)
		}
	}
}
