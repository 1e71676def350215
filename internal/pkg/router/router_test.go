package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shandysiswandi/goverify/internal/pkg/goerror"
	"github.com/shandysiswandi/goverify/internal/pkg/instrument"
	"github.com/shandysiswandi/goverify/internal/pkg/jwt"
)

type staticConfig struct{}

func (staticConfig) Close() error                    { return nil }
func (staticConfig) GetSecond(string) time.Duration  { return 0 }
func (staticConfig) GetMinute(string) time.Duration  { return 0 }
func (staticConfig) GetHour(string) time.Duration    { return 0 }
func (staticConfig) GetDay(string) time.Duration     { return 0 }
func (staticConfig) GetInt(string) int               { return 0 }
func (staticConfig) GetInt32(string) int32           { return 0 }
func (staticConfig) GetInt64(string) int64           { return 0 }
func (staticConfig) GetUint(string) uint             { return 0 }
func (staticConfig) GetUint16(string) uint16         { return 0 }
func (staticConfig) GetUint32(string) uint32         { return 0 }
func (staticConfig) GetUint64(string) uint64         { return 0 }
func (staticConfig) GetFloat32(string) float32       { return 0 }
func (staticConfig) GetFloat64(string) float64       { return 0 }
func (staticConfig) GetBool(string) bool             { return false }
func (staticConfig) GetString(string) string         { return "" }
func (staticConfig) GetBinary(string) []byte         { return nil }
func (staticConfig) GetArray(string) []string        { return nil }
func (staticConfig) GetMap(string) map[string]string { return nil }

type fakeStringID struct{}

func (fakeStringID) Generate() string { return "cid-test" }

type fakeJWT struct{ err error }

func (fakeJWT) Generate(phoneNumber string) (string, error) { return "token", nil }

func (f fakeJWT) Verify(string) (jwt.Claims, error) {
	if f.err != nil {
		return jwt.Claims{}, f.err
	}
	return jwt.Claims{PhoneNumber: "+12025550123"}, nil
}

func newTestRouter() *Router {
	return NewRouter(Config{
		Config:     staticConfig{},
		UUID:       fakeStringID{},
		JWT:        fakeJWT{},
		Instrument: instrument.NewNoop(),
	})
}

func TestRouterThrottledResponseCarriesRetryAfter(t *testing.T) {
	ro := newTestRouter()
	ro.POST("/api/v1/verification/otp", func(*Request) (any, error) {
		return nil, goerror.NewTooManyRequests(90 * time.Second)
	})

	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/verification/otp", nil))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "90" {
		t.Fatalf("Retry-After header = %q, want 90", got)
	}

	var body struct {
		RetryAfter int `json:"retry_after"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.RetryAfter != 90 {
		t.Fatalf("retry_after = %d, want 90", body.RetryAfter)
	}
}

func TestRouterThrottledWithoutHintOmitsRetryAfter(t *testing.T) {
	ro := newTestRouter()
	ro.POST("/api/v1/verification/otp", func(*Request) (any, error) {
		return nil, goerror.NewTooManyRequests(0)
	})

	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/verification/otp", nil))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "" {
		t.Fatalf("Retry-After header = %q, want unset", got)
	}
}

func TestRouterAuthenticationRequired(t *testing.T) {
	ro := newTestRouter()
	ro.GET("/api/v1/audit/verifications", func(*Request) (any, error) {
		return map[string]string{"ok": "yes"}, nil
	})

	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/audit/verifications", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/audit/verifications", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	ro.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status with token = %d, want 200", rec.Code)
	}
}

func TestRouterSuccessEnvelope(t *testing.T) {
	ro := newTestRouter()
	ro.POST("/api/v1/verification/otp", func(*Request) (any, error) {
		return messageResponse{}, nil
	})

	rec := httptest.NewRecorder()
	ro.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/verification/otp", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Message != "verification code sent" {
		t.Fatalf("message = %q, want %q", body.Message, "verification code sent")
	}
}

type messageResponse struct {
	Sent bool `json:"sent"`
}

func (messageResponse) Message() string { return "verification code sent" }
