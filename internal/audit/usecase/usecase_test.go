package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/goverify/internal/audit/entity"
	"github.com/shandysiswandi/goverify/internal/pkg/goerror"
	"github.com/shandysiswandi/goverify/internal/pkg/instrument"
	"github.com/shandysiswandi/goverify/internal/pkg/jwt"
	"github.com/shandysiswandi/goverify/internal/pkg/validator"
)

type fakeDB struct {
	events    []entity.AuditEvent
	lastList  entity.ListFilter
	createErr error
	listErr   error
}

func (f *fakeDB) CreateEvent(_ context.Context, in entity.AuditEvent) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.events = append(f.events, in)
	return nil
}

func (f *fakeDB) ListEvents(_ context.Context, filter entity.ListFilter) ([]entity.AuditEvent, error) {
	f.lastList = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fakeUID struct{ next int64 }

func (f *fakeUID) Generate() int64 {
	f.next++
	return f.next
}

type staticConfig struct{}

func (staticConfig) Close() error                    { return nil }
func (staticConfig) GetSecond(string) time.Duration  { return 0 }
func (staticConfig) GetMinute(string) time.Duration  { return 0 }
func (staticConfig) GetHour(string) time.Duration    { return 0 }
func (staticConfig) GetDay(string) time.Duration     { return 0 }
func (staticConfig) GetInt(string) int               { return 0 }
func (staticConfig) GetInt32(string) int32           { return 50 }
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

func newTestUsecase(t *testing.T, db *fakeDB) (*Usecase, fixedClock) {
	t.Helper()

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator returned error: %v", err)
	}

	clk := fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	uc := New(Dependency{
		RepoDB:     db,
		Config:     staticConfig{},
		UID:        &fakeUID{},
		Clock:      clk,
		Validator:  v10,
		Instrument: instrument.NewNoop(),
	})

	return uc, clk
}

func authedContext() context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{PhoneNumber: "+12025550123"})
}

func TestConsumeOTPIssued(t *testing.T) {
	db := &fakeDB{}
	uc, clk := newTestUsecase(t, db)

	issuedAt := clk.Now().Add(-2 * time.Second)
	err := uc.ConsumeOTPIssued(context.Background(), ConsumeOTPIssuedInput{
		PhoneNumber: "+12025550123",
		RequestIP:   "203.0.113.7",
		IssuedAt:    issuedAt,
	})
	if err != nil {
		t.Fatalf("ConsumeOTPIssued returned error: %v", err)
	}

	if len(db.events) != 1 {
		t.Fatalf("events stored = %d, want 1", len(db.events))
	}
	got := db.events[0]
	if got.EventType != entity.EventTypeOTPIssued {
		t.Fatalf("event type = %q, want %q", got.EventType, entity.EventTypeOTPIssued)
	}
	if got.RequestIP != "203.0.113.7" {
		t.Fatalf("request ip = %q, want 203.0.113.7", got.RequestIP)
	}
	if !got.OccurredAt.Equal(issuedAt) {
		t.Fatalf("occurred at = %v, want %v", got.OccurredAt, issuedAt)
	}
	if got.ID == 0 {
		t.Fatal("event id not assigned")
	}
}

func TestConsumeOTPIssuedFallsBackToClock(t *testing.T) {
	db := &fakeDB{}
	uc, clk := newTestUsecase(t, db)

	err := uc.ConsumeOTPIssued(context.Background(), ConsumeOTPIssuedInput{
		PhoneNumber: "+12025550123",
		RequestIP:   "203.0.113.7",
	})
	if err != nil {
		t.Fatalf("ConsumeOTPIssued returned error: %v", err)
	}

	if !db.events[0].OccurredAt.Equal(clk.Now()) {
		t.Fatalf("occurred at = %v, want clock now %v", db.events[0].OccurredAt, clk.Now())
	}
}

func TestConsumeOTPIssuedRejectsInvalidPhone(t *testing.T) {
	uc, _ := newTestUsecase(t, &fakeDB{})

	err := uc.ConsumeOTPIssued(context.Background(), ConsumeOTPIssuedInput{
		PhoneNumber: "not-a-phone",
	})

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error = %v, want *goerror.Error", err)
	}
	if gerr.Type() != goerror.TypeValidation {
		t.Fatalf("error type = %v, want TypeValidation", gerr.Type())
	}
}

func TestConsumeOTPVerified(t *testing.T) {
	db := &fakeDB{}
	uc, clk := newTestUsecase(t, db)

	err := uc.ConsumeOTPVerified(context.Background(), ConsumeOTPVerifiedInput{
		PhoneNumber: "+12025550123",
		Outcome:     "success",
		VerifiedAt:  clk.Now(),
	})
	if err != nil {
		t.Fatalf("ConsumeOTPVerified returned error: %v", err)
	}

	if len(db.events) != 1 {
		t.Fatalf("events stored = %d, want 1", len(db.events))
	}
	if db.events[0].EventType != entity.EventTypeOTPVerified {
		t.Fatalf("event type = %q, want %q", db.events[0].EventType, entity.EventTypeOTPVerified)
	}
	if db.events[0].Outcome != "success" {
		t.Fatalf("outcome = %q, want success", db.events[0].Outcome)
	}
}

func TestConsumeOTPVerifiedRequiresOutcome(t *testing.T) {
	uc, _ := newTestUsecase(t, &fakeDB{})

	err := uc.ConsumeOTPVerified(context.Background(), ConsumeOTPVerifiedInput{
		PhoneNumber: "+12025550123",
	})
	if err == nil {
		t.Fatal("ConsumeOTPVerified succeeded without outcome, want validation error")
	}
}

func TestListEvents(t *testing.T) {
	db := &fakeDB{events: []entity.AuditEvent{
		{ID: 1, EventType: entity.EventTypeOTPIssued, PhoneNumber: "+12025550123"},
		{ID: 2, EventType: entity.EventTypeOTPVerified, PhoneNumber: "+12025550123"},
	}}
	uc, _ := newTestUsecase(t, db)

	out, err := uc.ListEvents(authedContext(), ListEventsInput{
		PhoneNumber: "+12025550123",
		Limit:       10,
	})
	if err != nil {
		t.Fatalf("ListEvents returned error: %v", err)
	}

	if len(out.Events) != 2 {
		t.Fatalf("events returned = %d, want 2", len(out.Events))
	}
	if db.lastList.Limit != 10 {
		t.Fatalf("list limit = %d, want 10", db.lastList.Limit)
	}
	if db.lastList.PhoneNumber != "+12025550123" {
		t.Fatalf("list phone = %q, want +12025550123", db.lastList.PhoneNumber)
	}
}

func TestListEventsDefaultLimit(t *testing.T) {
	db := &fakeDB{}
	uc, _ := newTestUsecase(t, db)

	if _, err := uc.ListEvents(authedContext(), ListEventsInput{}); err != nil {
		t.Fatalf("ListEvents returned error: %v", err)
	}
	if db.lastList.Limit != 50 {
		t.Fatalf("list limit = %d, want config default 50", db.lastList.Limit)
	}
}

func TestListEventsRequiresAuth(t *testing.T) {
	uc, _ := newTestUsecase(t, &fakeDB{})

	_, err := uc.ListEvents(context.Background(), ListEventsInput{})

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error = %v, want *goerror.Error", err)
	}
	if gerr.Code() != goerror.CodeUnauthorized {
		t.Fatalf("error code = %v, want CodeUnauthorized", gerr.Code())
	}
}

func TestListEventsRepoError(t *testing.T) {
	db := &fakeDB{listErr: errors.New("connection reset")}
	uc, _ := newTestUsecase(t, db)

	_, err := uc.ListEvents(authedContext(), ListEventsInput{})

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error = %v, want *goerror.Error", err)
	}
	if gerr.Type() != goerror.TypeServer {
		t.Fatalf("error type = %v, want TypeServer", gerr.Type())
	}
}
