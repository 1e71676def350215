package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTwilioBaseURL = "https://api.twilio.com"

var (
	// ErrTwilioCredentialsRequired is returned when the account SID or auth token is missing.
	ErrTwilioCredentialsRequired = errors.New("twilio account sid and auth token are required")
	// ErrTwilioFromRequired is returned when no sender phone number is configured.
	ErrTwilioFromRequired = errors.New("twilio sender phone number is required")
	// ErrTwilioRecipientRequired is returned when Send is called with an empty recipient.
	ErrTwilioRecipientRequired = errors.New("no recipient provided")
)

// Twilio is an SMS implementation backed by the Twilio Messages REST API.
type Twilio struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	client     *http.Client
}

// TwilioConfig configures the Twilio implementation.
type TwilioConfig struct {
	// AccountSID is the Twilio account identifier.
	AccountSID string
	// AuthToken is the Twilio API secret.
	AuthToken string
	// From is the sender phone number in E.164 form.
	From string
	// BaseURL overrides the API host, used in tests.
	BaseURL string
	// Timeout bounds each API call; defaults to 10 seconds.
	Timeout time.Duration
}

// NewTwilio constructs a Twilio SMS sender.
func NewTwilio(cfg TwilioConfig) (*Twilio, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, ErrTwilioCredentialsRequired
	}
	if cfg.From == "" {
		return nil, ErrTwilioFromRequired
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultTwilioBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Twilio{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.From,
		baseURL:    baseURL,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

// Send delivers body to the recipient through the Messages endpoint.
func (t *Twilio) Send(ctx context.Context, to, body string) error {
	if to == "" {
		return ErrTwilioRecipientRequired
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.baseURL, t.accountSID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("sms: build twilio request: %w", err)
	}
	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms: call twilio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		//nolint:errcheck // drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var apiErr struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Message == "" {
		return fmt.Errorf("sms: twilio returned status %d", resp.StatusCode)
	}

	return fmt.Errorf("sms: twilio error %d: %s", apiErr.Code, apiErr.Message)
}

// Close implements io.Closer for interface compatibility.
func (t *Twilio) Close() error {
	t.client.CloseIdleConnections()
	return nil
}
