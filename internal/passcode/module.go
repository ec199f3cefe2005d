package passcode

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/passcode/internal/passcode/entity"
	"github.com/shandysiswandi/passcode/internal/passcode/inbound"
	"github.com/shandysiswandi/passcode/internal/passcode/outbound/email"
	"github.com/shandysiswandi/passcode/internal/passcode/outbound/mq"
	"github.com/shandysiswandi/passcode/internal/passcode/outbound/store"
	"github.com/shandysiswandi/passcode/internal/passcode/usecase"
	"github.com/shandysiswandi/passcode/internal/pkg/clock"
	"github.com/shandysiswandi/passcode/internal/pkg/config"
	"github.com/shandysiswandi/passcode/internal/pkg/goroutine"
	"github.com/shandysiswandi/passcode/internal/pkg/idempotency"
	"github.com/shandysiswandi/passcode/internal/pkg/instrument"
	"github.com/shandysiswandi/passcode/internal/pkg/mail"
	"github.com/shandysiswandi/passcode/internal/pkg/messaging"
	"github.com/shandysiswandi/passcode/internal/pkg/otp"
	"github.com/shandysiswandi/passcode/internal/pkg/uid"
	"github.com/shandysiswandi/passcode/internal/pkg/validator"
)

const (
	DeliveryDirect = "direct"
	DeliveryQueue  = "queue"
)

var (
	ErrUnknownStoreDriver  = errors.New("passcode: unknown store driver")
	ErrStoreConnRequired   = errors.New("passcode: store driver requires a connection")
	ErrUnknownDeliveryMode = errors.New("passcode: unknown delivery mode")
	ErrMessagingRequired   = errors.New("passcode: queue delivery requires messaging")
)

type Dependency struct {
	Ctx         context.Context
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UUID        uid.StringID               `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	Generator   otp.Generator              `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Mail        mail.Mail                  `validate:"required"`
	DBConn      *pgxpool.Pool
	CacheConn   redis.UniversalClient
	Idempotency idempotency.Guard
	Messaging   messaging.Messaging
}

type recordStore interface {
	Lock(ctx context.Context, identifier string) (func(), error)
	Put(ctx context.Context, rec entity.Record) error
	Get(ctx context.Context, identifier string) (*entity.Record, error)
	Delete(ctx context.Context, identifier string) error
	Sweep(ctx context.Context, now time.Time) (int, error)
}

// New wires the passcode module. When dep.Ctx is set the sweeper and the
// delivery consumer are started on dep.Goroutine.
func New(dep Dependency) (*usecase.Usecase, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	st, err := newStore(dep)
	if err != nil {
		return nil, err
	}

	repoMail := email.New(dep.Mail, dep.Instrument, email.Options{
		AppName: dep.Config.GetString("modules.passcode.mail.app_name"),
		From:    dep.Config.GetString("modules.passcode.mail.from"),
	})

	ucDep := usecase.Dependency{
		Store:      st,
		Generator:  dep.Generator,
		Mailer:     repoMail,
		RepoMail:   repoMail,
		Clock:      dep.Clock,
		Validator:  dep.Validator,
		Instrument: dep.Instrument,
	}

	switch mode := strings.TrimSpace(dep.Config.GetString("modules.passcode.delivery")); mode {
	case "", DeliveryDirect:
	case DeliveryQueue:
		if dep.Messaging == nil {
			return nil, ErrMessagingRequired
		}
		ucDep.Mailer = mq.NewMessaging(dep.Messaging, dep.Instrument)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDeliveryMode, mode)
	}

	uc := usecase.New(ucDep)

	if dep.Ctx != nil {
		inbound.RegisterSweeper(dep.Ctx, dep.Config, dep.Goroutine, uc)
		if dep.Messaging != nil {
			inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, dep.Idempotency, uc, dep.Instrument)
		}
	}

	return uc, nil
}

func newStore(dep Dependency) (recordStore, error) {
	cfg := dep.Config
	lockWait := cfg.GetMillisecond("store.lock_wait_ms")

	switch driver := strings.TrimSpace(cfg.GetString("store.driver")); driver {
	case "", store.DriverMemory:
		return store.NewMemory(), nil

	case store.DriverRedis:
		if dep.CacheConn == nil {
			return nil, fmt.Errorf("%w: %s", ErrStoreConnRequired, driver)
		}
		return store.NewRedis(dep.CacheConn, dep.Instrument, store.RedisOptions{
			LockTTL:  cfg.GetSecond("store.redis.lock_ttl_seconds"),
			LockWait: lockWait,
			Grace:    cfg.GetMinute("store.redis.grace_minutes"),
		}), nil

	case store.DriverPostgres:
		if dep.DBConn == nil {
			return nil, fmt.Errorf("%w: %s", ErrStoreConnRequired, driver)
		}
		pg := store.NewPostgres(dep.DBConn, dep.Instrument, store.PostgresOptions{LockWait: lockWait})
		if cfg.GetBool("store.postgres.migrate") {
			ctx := dep.Ctx
			if ctx == nil {
				ctx = context.Background()
			}
			if err := pg.Migrate(ctx); err != nil {
				return nil, fmt.Errorf("passcode: migrate postgres store: %w", err)
			}
		}
		return pg, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStoreDriver, driver)
	}
}
