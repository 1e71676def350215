package sms

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DriverTwilio selects the Twilio REST backend.
	DriverTwilio = "twilio"
	// DriverLog selects the log-only backend for non-production use.
	DriverLog = "log"
)

// ErrUnknownDriver indicates an unsupported SMS driver.
var ErrUnknownDriver = errors.New("sms: unknown driver")

// FactoryOptions groups config for supported SMS backends.
type FactoryOptions struct {
	// Environment is the deployment environment name; the log driver is
	// rejected when it equals "production".
	Environment string
	// Twilio provides configuration for the Twilio driver.
	Twilio TwilioConfig
}

// NewFromDriver constructs an SMS implementation by driver name.
func NewFromDriver(driver string, opts FactoryOptions) (SMS, error) {
	switch strings.TrimSpace(driver) {
	case DriverTwilio:
		return NewTwilio(opts.Twilio)
	case DriverLog:
		return NewLog(opts.Environment)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
