package mail

import (
	"context"
	"log/slog"
)

// Message is one email with both a plain-text and an HTML body.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a message or reports why it could not.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender only logs messages. It stands in for SMTP in development.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender returns a LogSender writing to logger.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger.With(slog.String("component", "log_mailer"))}
}

// Send implements Sender.
func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "would send email",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject))
	return nil
}
