package notification

import (
	"context"
	"log/slog"
)

// Message describes an outbound mail payload.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Notifier delivers messages to account holders.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that writes messages to the logger.
// It stands in for SMTP during development and in tests.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "to", message.To, "subject", message.Subject, "body", message.Body)
	return nil
}
