// Package sms defines the contract for sending text messages.
//
// Use cases depend on the SMS interface only; the concrete provider (Twilio
// REST API, or a log-only driver for non-production environments) is chosen
// by the composition root through the factory.
package sms
