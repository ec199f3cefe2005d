package inbound

import (
	"context"

	"github.com/shandysiswandi/passcode/internal/passcode/usecase"
)

type uc interface {
	Deliver(ctx context.Context, in usecase.DeliverInput) error
	Sweep(ctx context.Context) (int, error)
}
