package mail

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// LogSender writes letters to the log instead of delivering them. Used when
// no SMTP relay is configured.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(logger logging.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info(ctx, "mail not delivered, no smtp relay configured",
		"from", msg.From, "to", msg.To, "subject", msg.Subject, "text", msg.Text)
	return nil
}
