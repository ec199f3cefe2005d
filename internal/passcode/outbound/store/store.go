// Package store keeps passcode records keyed by identifier.
//
// Every backend offers the same contract: Put, Get and Delete are atomic per
// identifier, Lock serializes read-modify-write sequences on one identifier
// without blocking other identifiers, and Sweep evicts expired records one
// identifier lock at a time. While an identifier is locked, only the lock
// holder may call Put, Get or Delete for it.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shandysiswandi/passcode/internal/pkg/goerror"
	"github.com/shandysiswandi/passcode/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"

	defaultLockWait = 5 * time.Second
)

func startSpan(ctx context.Context, ins instrument.Instrumentation, name string) (context.Context, trace.Span) {
	return ins.Tracer("passcode.outbound.store").Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// lockError reports a wait that ran out of lockWait as ErrLockTimeout.
func lockError(parent context.Context, err error) error {
	if parent.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", goerror.ErrLockTimeout, err)
	}
	return err
}
