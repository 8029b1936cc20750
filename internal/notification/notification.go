package notification

import (
	"context"
	"log/slog"
)

const (
	// KindWelcome is sent once an account has been created.
	KindWelcome = "account_welcome"
	// KindSignIn is sent after a successful login.
	KindSignIn = "account_sign_in"
)

// Message describes a notification payload.
type Message struct {
	Kind        string
	UserID      string
	Destination string
	Body        string
}

// Notifier delivers account notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger instead of
// delivering them.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger. Destinations are not
// logged.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		slog.String("kind", message.Kind),
		slog.String("user_id", message.UserID),
		slog.String("body", message.Body),
	)
	return nil
}

// Recorder keeps sent messages in memory.
type Recorder struct {
	Messages []Message
}

// Send appends message.
func (r *Recorder) Send(_ context.Context, message Message) error {
	r.Messages = append(r.Messages, message)
	return nil
}
