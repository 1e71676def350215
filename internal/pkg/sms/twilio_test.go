package sms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTwilioSend(t *testing.T) {
	var gotPath, gotTo, gotFrom, gotBody string
	var gotUser, gotPass string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotTo = r.PostForm.Get("To")
		gotFrom = r.PostForm.Get("From")
		gotBody = r.PostForm.Get("Body")

		w.WriteHeader(http.StatusCreated)
		//nolint:errcheck // test server
		w.Write([]byte(`{"sid":"SM123","status":"queued"}`))
	}))
	defer srv.Close()

	client, err := NewTwilio(TwilioConfig{
		AccountSID: "AC123",
		AuthToken:  "token",
		From:       "+15005550006",
		BaseURL:    srv.URL,
	})
	if err != nil {
		t.Fatalf("NewTwilio returned error: %v", err)
	}

	if err := client.Send(context.Background(), "+12025550123", "Your verification code is 048392."); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if gotPath != "/2010-04-01/Accounts/AC123/Messages.json" {
		t.Errorf("path = %q", gotPath)
	}
	if gotUser != "AC123" || gotPass != "token" {
		t.Errorf("basic auth = %q:%q", gotUser, gotPass)
	}
	if gotTo != "+12025550123" || gotFrom != "+15005550006" {
		t.Errorf("to/from = %q/%q", gotTo, gotFrom)
	}
	if gotBody == "" {
		t.Error("body is empty")
	}
}

func TestTwilioSendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		//nolint:errcheck // test server
		w.Write([]byte(`{"code":21211,"message":"The 'To' number is not a valid phone number."}`))
	}))
	defer srv.Close()

	client, err := NewTwilio(TwilioConfig{
		AccountSID: "AC123",
		AuthToken:  "token",
		From:       "+15005550006",
		BaseURL:    srv.URL,
	})
	if err != nil {
		t.Fatalf("NewTwilio returned error: %v", err)
	}

	if err := client.Send(context.Background(), "not-a-phone", "hi"); err == nil {
		t.Fatal("Send returned nil, want API error")
	}
}

func TestTwilioConfigValidation(t *testing.T) {
	if _, err := NewTwilio(TwilioConfig{From: "+15005550006"}); err == nil {
		t.Fatal("expected credential error")
	}
	if _, err := NewTwilio(TwilioConfig{AccountSID: "AC123", AuthToken: "token"}); err == nil {
		t.Fatal("expected sender error")
	}
}

func TestLogDriverRefusesProduction(t *testing.T) {
	if _, err := NewLog("production"); err == nil {
		t.Fatal("expected production refusal")
	}
	if _, err := NewLog("development"); err != nil {
		t.Fatalf("NewLog(development) returned error: %v", err)
	}
}
