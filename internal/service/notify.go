package service

import (
	"context"
	"log/slog"
)

// LogNotifier writes guardian alerts to the structured log instead of an SMS
// gateway. It is the default notifier for environments without delivery
// credentials.
type LogNotifier struct{}

// NewLogNotifier creates a log-only notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Send records the alert. The phone number is logged in full because the log
// is the delivery channel here; real gateways replace this implementation.
func (n *LogNotifier) Send(_ context.Context, phone, message string) error {
	slog.Info("guardian alert",
		slog.String("phone", phone),
		slog.String("message", message))
	return nil
}
