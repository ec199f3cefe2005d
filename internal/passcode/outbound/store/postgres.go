package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/passcode/internal/passcode/entity"
	"github.com/shandysiswandi/passcode/internal/pkg/goerror"
	"github.com/shandysiswandi/passcode/internal/pkg/instrument"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS passcode_records (
	identifier    TEXT PRIMARY KEY,
	code          TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	expires_at    TIMESTAMPTZ NOT NULL,
	attempts_used INTEGER NOT NULL DEFAULT 0,
	consumed      BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS passcode_records_expires_at_idx ON passcode_records (expires_at);
`

const (
	queryUpsertRecord = `
INSERT INTO passcode_records (identifier, code, created_at, expires_at, attempts_used, consumed)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (identifier) DO UPDATE SET
	code = EXCLUDED.code,
	created_at = EXCLUDED.created_at,
	expires_at = EXCLUDED.expires_at,
	attempts_used = EXCLUDED.attempts_used,
	consumed = EXCLUDED.consumed`

	queryGetRecord = `
SELECT identifier, code, created_at, expires_at, attempts_used, consumed
FROM passcode_records WHERE identifier = $1`

	queryDeleteRecord        = `DELETE FROM passcode_records WHERE identifier = $1`
	queryDeleteExpiredRecord = `DELETE FROM passcode_records WHERE identifier = $1 AND expires_at < $2`
	queryListExpired         = `SELECT identifier FROM passcode_records WHERE expires_at < $1`

	queryAdvisoryLock   = `SELECT pg_advisory_lock(hashtextextended($1, 0))`
	queryAdvisoryUnlock = `SELECT pg_advisory_unlock(hashtextextended($1, 0))`
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresOptions struct {
	// LockWait bounds how long Lock waits before giving up with ErrLockTimeout.
	LockWait time.Duration
}

// Postgres stores records in the passcode_records table. An identifier lock is
// a session advisory lock, and the holder's queries run on the locking connection.
type Postgres struct {
	pool     *pgxpool.Pool
	ins      instrument.Instrumentation
	lockWait time.Duration

	mu   sync.Mutex
	held map[string]*pgxpool.Conn
}

func NewPostgres(pool *pgxpool.Pool, ins instrument.Instrumentation, opts PostgresOptions) *Postgres {
	lockWait := opts.LockWait
	if lockWait <= 0 {
		lockWait = defaultLockWait
	}

	return &Postgres{
		pool:     pool,
		ins:      ins,
		lockWait: lockWait,
		held:     make(map[string]*pgxpool.Conn),
	}
}

// Migrate creates the table and index when missing.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, postgresSchema)
	return err
}

func (p *Postgres) mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}
	return err
}

func (p *Postgres) querier(identifier string) querier {
	p.mu.Lock()
	defer p.mu.Unlock()

	if conn, ok := p.held[identifier]; ok {
		return conn
	}
	return p.pool
}

func (p *Postgres) Lock(ctx context.Context, identifier string) (_ func(), err error) {
	ctx, span := startSpan(ctx, p.ins, "Postgres.Lock")
	defer func() { endSpan(span, err) }()

	waitCtx, cancel := context.WithTimeout(ctx, p.lockWait)
	defer cancel()

	conn, err := p.pool.Acquire(waitCtx)
	if err != nil {
		return nil, lockError(ctx, err)
	}

	if _, err := conn.Exec(waitCtx, queryAdvisoryLock, identifier); err != nil {
		conn.Release()
		return nil, lockError(ctx, err)
	}

	p.mu.Lock()
	p.held[identifier] = conn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.held, identifier)
			p.mu.Unlock()

			if _, err := conn.Exec(context.WithoutCancel(ctx), queryAdvisoryUnlock, identifier); err != nil {
				_ = conn.Conn().Close(context.WithoutCancel(ctx))
			}
			conn.Release()
		})
	}, nil
}

func (p *Postgres) Put(ctx context.Context, rec entity.Record) (err error) {
	ctx, span := startSpan(ctx, p.ins, "Postgres.Put")
	defer func() { endSpan(span, err) }()

	_, err = p.querier(rec.Identifier).Exec(ctx, queryUpsertRecord,
		rec.Identifier, rec.Code, rec.CreatedAt, rec.ExpiresAt, rec.AttemptsUsed, rec.Consumed)
	return p.mapError(err)
}

func (p *Postgres) Get(ctx context.Context, identifier string) (_ *entity.Record, err error) {
	ctx, span := startSpan(ctx, p.ins, "Postgres.Get")
	defer func() { endSpan(span, err) }()

	var rec entity.Record
	err = p.querier(identifier).QueryRow(ctx, queryGetRecord, identifier).Scan(
		&rec.Identifier, &rec.Code, &rec.CreatedAt, &rec.ExpiresAt, &rec.AttemptsUsed, &rec.Consumed)
	if err != nil {
		return nil, p.mapError(err)
	}

	return &rec, nil
}

func (p *Postgres) Delete(ctx context.Context, identifier string) (err error) {
	ctx, span := startSpan(ctx, p.ins, "Postgres.Delete")
	defer func() { endSpan(span, err) }()

	_, err = p.querier(identifier).Exec(ctx, queryDeleteRecord, identifier)
	return p.mapError(err)
}

func (p *Postgres) Sweep(ctx context.Context, now time.Time) (n int, err error) {
	ctx, span := startSpan(ctx, p.ins, "Postgres.Sweep")
	defer func() { endSpan(span, err) }()

	rows, err := p.pool.Query(ctx, queryListExpired, now)
	if err != nil {
		return 0, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		evicted, err := p.sweepOne(ctx, id, now)
		if err != nil {
			return n, err
		}
		if evicted {
			n++
		}
	}

	return n, nil
}

func (p *Postgres) sweepOne(ctx context.Context, identifier string, now time.Time) (bool, error) {
	unlock, err := p.Lock(ctx, identifier)
	if err != nil {
		return false, err
	}
	defer unlock()

	tag, err := p.querier(identifier).Exec(ctx, queryDeleteExpiredRecord, identifier, now)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}
