package sms

import (
	"context"
	"io"
)

// SMS abstracts a text-message delivery provider.
type SMS interface {
	io.Closer
	// Send delivers body to the phone number in E.164 form.
	Send(ctx context.Context, to, body string) error
}
