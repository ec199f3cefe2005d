package email

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/passcode/internal/passcode/usecase"
	"github.com/shandysiswandi/passcode/internal/pkg/instrument"
	"github.com/shandysiswandi/passcode/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

const defaultAppName = "Placement Prediction System"

type Options struct {
	// AppName is shown in the subject and the email body.
	AppName string
	// From overrides the sender configured on the mail client.
	From string
}

// Mail renders passcode emails and sends them through a mail client.
type Mail struct {
	client mail.Mail
	ins    instrument.Instrumentation
	opts   Options
}

func New(client mail.Mail, ins instrument.Instrumentation, opts Options) *Mail {
	if opts.AppName == "" {
		opts.AppName = defaultAppName
	}
	return &Mail{client: client, ins: ins, opts: opts}
}

func (m *Mail) SendCode(ctx context.Context, d usecase.Delivery) error {
	ctx, span := m.ins.Tracer("passcode.outbound.email").Start(ctx, "SendCode")
	defer span.End()

	msg, err := m.render(d)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("render passcode email: %w", err)
	}

	if err := m.client.Send(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
