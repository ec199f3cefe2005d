package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/passcode/internal/passcode/entity"
	"github.com/shandysiswandi/passcode/internal/pkg/clock"
	"github.com/shandysiswandi/passcode/internal/pkg/instrument"
	"github.com/shandysiswandi/passcode/internal/pkg/otp"
	"github.com/shandysiswandi/passcode/internal/pkg/validator"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

type repoStore interface {
	// Lock serializes read-modify-write sequences on one identifier.
	Lock(ctx context.Context, identifier string) (unlock func(), err error)
	Put(ctx context.Context, rec entity.Record) error
	Get(ctx context.Context, identifier string) (*entity.Record, error)
	Delete(ctx context.Context, identifier string) error
	Sweep(ctx context.Context, now time.Time) (int, error)
}

type mailer interface {
	SendCode(ctx context.Context, d Delivery) error
}

// Delivery is a code on its way to the owner of Identifier.
type Delivery struct {
	Identifier string
	Name       string
	Code       string
	ExpiresAt  time.Time
}

type Usecase struct {
	store     repoStore
	generator otp.Generator
	mailer    mailer
	repoMail  mailer
	clock     clock.Clocker
	validator validator.Validator
	ins       instrument.Instrumentation

	issued   metric.Int64Counter
	outcomes metric.Int64Counter
	evicted  metric.Int64Counter
}

type Dependency struct {
	Store      repoStore
	Generator  otp.Generator
	Mailer     mailer
	RepoMail   mailer
	Clock      clock.Clocker
	Validator  validator.Validator
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	meter := dep.Instrument.Meter("passcode.usecase")

	return &Usecase{
		store:     dep.Store,
		generator: dep.Generator,
		mailer:    dep.Mailer,
		repoMail:  dep.RepoMail,
		clock:     dep.Clock,
		validator: dep.Validator,
		ins:       dep.Instrument,
		issued:    newCounter(meter, "passcode.request.issued", "Codes issued"),
		outcomes:  newCounter(meter, "passcode.verify.outcomes", "Verification results by status"),
		evicted:   newCounter(meter, "passcode.sweep.evicted", "Expired records removed by the sweeper"),
	}
}

func newCounter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		slog.Warn("failed to create counter, falling back to noop", "name", name, "error", err)
		return metricnoop.Int64Counter{}
	}
	return c
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("passcode.usecase").Start(ctx, name)
}

func normalizeIdentifier(v string) string {
	return strings.TrimSpace(strings.ToLower(v))
}
