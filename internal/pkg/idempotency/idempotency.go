// Package idempotency records keyed operation outcomes in Redis so that a redelivered
// message or retried request runs its side effect at most once.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrInProgress is returned when another worker currently holds the key.
	ErrInProgress = errors.New("idempotency: operation already in progress")
	// ErrCompleted is returned when the operation already finished successfully.
	ErrCompleted = errors.New("idempotency: operation already completed")
	// ErrInvalidState is returned when the stored value is not a known state.
	ErrInvalidState = errors.New("idempotency: invalid state")
)

// State is the recorded progress of a keyed operation.
type State string

const (
	StateNone       State = "none"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

func (s State) String() string {
	return string(s)
}

const (
	defaultPrefix       = "idempotency:"
	defaultLockDuration = time.Minute
	defaultDoneTTL      = 10 * time.Minute
)

// Guard runs fn once per key.
type Guard interface {
	Run(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

// Option tunes a single Run call.
type Option func(*runOptions)

type runOptions struct {
	lockDuration time.Duration
	doneTTL      time.Duration
}

// WithLockDuration bounds how long an in-progress claim survives a crashed worker.
func WithLockDuration(d time.Duration) Option {
	return func(o *runOptions) { o.lockDuration = d }
}

// WithDoneTTL sets how long a completed key is remembered.
func WithDoneTTL(d time.Duration) Option {
	return func(o *runOptions) { o.doneTTL = d }
}

// Tracker is a Redis backed Guard.
type Tracker struct {
	client redis.UniversalClient
	prefix string
}

// New returns a Tracker. An empty prefix defaults to "idempotency:".
func New(client redis.UniversalClient, prefix string) *Tracker {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Tracker{client: client, prefix: prefix}
}

// Acquire claims key, returning StateNone when the caller now owns it.
func (t *Tracker) Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, error) {
	prev, err := t.client.SetArgs(ctx, t.prefix+key, StateInProgress.String(), redis.SetArgs{
		Mode: "NX",
		TTL:  lockDuration,
		Get:  true,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return StateNone, nil
	}
	if err != nil {
		return "", fmt.Errorf("idempotency: acquire %s: %w", key, err)
	}

	switch State(prev) {
	case StateInProgress, StateCompleted:
		return State(prev), nil
	default:
		return "", ErrInvalidState
	}
}

// Complete marks key done for ttl.
func (t *Tracker) Complete(ctx context.Context, key string, ttl time.Duration) error {
	return t.client.Set(ctx, t.prefix+key, StateCompleted.String(), ttl).Err()
}

// Release forgets key so that a later attempt may run again.
func (t *Tracker) Release(ctx context.Context, key string) error {
	return t.client.Del(ctx, t.prefix+key).Err()
}

// Run claims key, calls fn and records the outcome. A failed fn releases the key.
func (t *Tracker) Run(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	ro := runOptions{lockDuration: defaultLockDuration, doneTTL: defaultDoneTTL}
	for _, opt := range opts {
		opt(&ro)
	}
	if ro.lockDuration <= 0 {
		ro.lockDuration = defaultLockDuration
	}
	if ro.doneTTL <= 0 {
		ro.doneTTL = defaultDoneTTL
	}

	state, err := t.Acquire(ctx, key, ro.lockDuration)
	if err != nil {
		return err
	}

	switch state {
	case StateInProgress:
		return ErrInProgress
	case StateCompleted:
		return ErrCompleted
	}

	if err := fn(ctx); err != nil {
		return errors.Join(err, t.Release(context.WithoutCancel(ctx), key))
	}

	return t.Complete(ctx, key, ro.doneTTL)
}
