package mail

import (
	"context"
	"log/slog"
)

// Log is a Mail implementation that only writes messages to slog.
type Log struct {
	defaultFrom string
}

// NewLog returns a Log mailer.
func NewLog(defaultFrom string) *Log {
	return &Log{defaultFrom: defaultFrom}
}

// Send logs the message instead of delivering it.
func (l *Log) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.Recipients()) == 0 {
		return ErrSMTPNoRecipients
	}

	from := msg.From
	if from == "" {
		from = l.defaultFrom
	}

	slog.InfoContext(ctx, "mail not sent, log mailer in use",
		"from", from,
		"to", msg.To,
		"subject", msg.Subject,
		"text_body", msg.TextBody,
	)

	return nil
}

// Close implements io.Closer for interface compatibility.
func (l *Log) Close() error {
	return nil
}
