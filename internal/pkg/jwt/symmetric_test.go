package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fixedUUID struct{ id string }

func (u fixedUUID) Generate() string { return u.id }

func newTestJWT(t *testing.T, now time.Time) *Symmetric {
	t.Helper()

	j, err := NewHS512(Config{
		Secret:     []byte(strings.Repeat("s", 64)),
		Issuer:     "goverify",
		Audiences:  []string{"goverify-api"},
		TTLMinutes: 15 * time.Minute,
		Clock:      fixedClock{now: now},
		UUID:       fixedUUID{id: "0199b0f4-0000-7000-8000-000000000000"},
	})
	if err != nil {
		t.Fatalf("NewHS512 returned error: %v", err)
	}
	return j
}

func TestGenerateVerifyRoundTrip(t *testing.T) {
	j := newTestJWT(t, time.Now())

	token, err := j.Generate("+12025550123")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	claims, err := j.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.PhoneNumber != "+12025550123" {
		t.Fatalf("phone claim = %q, want +12025550123", claims.PhoneNumber)
	}
	if claims.Subject != "+12025550123" {
		t.Fatalf("subject = %q, want phone number", claims.Subject)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issued := newTestJWT(t, time.Now().Add(-time.Hour))

	token, err := issued.Generate("+12025550123")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if _, err := newTestJWT(t, time.Now()).Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("Verify error = %v, want ErrTokenExpired", err)
	}
}

func TestNewHS512RejectsShortSecret(t *testing.T) {
	_, err := NewHS512(Config{Secret: []byte("short")})
	if !errors.Is(err, ErrSigningKeyTooShort) {
		t.Fatalf("error = %v, want ErrSigningKeyTooShort", err)
	}
}
