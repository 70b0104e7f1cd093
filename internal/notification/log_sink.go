package notification

import (
	"context"

	"github.com/mrcrpro/panaguas/eventstore"
)

// LogSink writes notifications to the log. It is used when no SMTP server is configured.
type LogSink struct {
	logger eventstore.ContextualLogger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger eventstore.ContextualLogger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Send(ctx context.Context, n Notification) error {
	s.logger.InfoContext(ctx, "notification",
		"kind", string(n.Kind),
		"user_id", n.Recipient.UserID,
		"loan_id", n.LoanID,
		"station_id", n.Details.StationID,
		"fine_amount", n.Details.FineAmount,
	)

	return nil
}
