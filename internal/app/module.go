package app

import (
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/passcode/internal/passcode"
)

func (a *App) initModules() {
	var cache redis.UniversalClient
	if a.cacheConn != nil {
		cache = a.cacheConn
	}

	uc, err := passcode.New(passcode.Dependency{
		Ctx:         a.ctx,
		Config:      a.config,
		Instrument:  a.ins,
		UUID:        a.uuid,
		Clock:       a.clock,
		Validator:   a.validator,
		Generator:   a.generator,
		Goroutine:   a.goroutine,
		Mail:        a.mail,
		DBConn:      a.dbConn,
		CacheConn:   cache,
		Idempotency: a.idemp,
		Messaging:   a.messaging,
	})
	if err != nil {
		slog.Error("failed to init module passcode", "error", err)
		os.Exit(1)
	}

	a.passcode = uc
}
