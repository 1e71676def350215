package sms

import (
	"context"
	"errors"
	"log/slog"
)

// ErrLogDriverInProduction is returned when the log driver is configured in a
// production environment.
var ErrLogDriverInProduction = errors.New("sms log driver must not be used in production")

// Log is an SMS implementation that writes messages to the application log
// instead of delivering them.
//
// It exists so non-production environments can observe the delivered message
// (including the verification code) without a Twilio account. Construction
// fails for production environments; the code must never be surfaced this way
// in a real deployment.
type Log struct{}

// NewLog constructs the log-only sender, refusing production environments.
func NewLog(environment string) (*Log, error) {
	if environment == "production" {
		return nil, ErrLogDriverInProduction
	}

	return &Log{}, nil
}

// Send writes the would-be message to the log.
func (*Log) Send(ctx context.Context, to, body string) error {
	slog.InfoContext(ctx, "sms not sent, log driver active", "to", to, "sms_body", body)
	return nil
}

// Close implements io.Closer for interface compatibility.
func (*Log) Close() error {
	return nil
}
