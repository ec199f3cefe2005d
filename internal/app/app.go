package app

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
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

// Passcode is the operation set the application exposes to its callers.
type Passcode interface {
	Request(ctx context.Context, in usecase.RequestInput) (*usecase.RequestOutput, error)
	Verify(ctx context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error)
	Send(ctx context.Context, in usecase.SendInput) (*usecase.RequestOutput, error)
}

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uuid      uid.StringID
	generator otp.Generator

	// resources, nil when not configured
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Guard
	mail      mail.Mail
	messaging messaging.Messaging

	// modules
	passcode Passcode

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initMessaging()
	app.initModules()
	app.initClosers()

	return app
}

// Passcode returns the passcode operations.
func (a *App) Passcode() Passcode {
	return a.passcode
}
