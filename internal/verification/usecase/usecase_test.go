package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/goverify/internal/pkg/goerror"
	"github.com/shandysiswandi/goverify/internal/pkg/hash"
	"github.com/shandysiswandi/goverify/internal/pkg/instrument"
	"github.com/shandysiswandi/goverify/internal/pkg/jwt"
	"github.com/shandysiswandi/goverify/internal/pkg/ratelimit"
	"github.com/shandysiswandi/goverify/internal/pkg/validator"
	"github.com/shandysiswandi/goverify/internal/verification/entity"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeDB struct {
	mu      sync.Mutex
	records map[string]entity.VerificationRecord
}

func newFakeDB() *fakeDB {
	return &fakeDB{records: make(map[string]entity.VerificationRecord)}
}

func (f *fakeDB) UpsertRecord(_ context.Context, in entity.VerificationRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[in.PhoneNumber] = in
	return nil
}

func (f *fakeDB) GetRecordByPhone(_ context.Context, phoneNumber string) (*entity.VerificationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[phoneNumber]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &rec, nil
}

func (f *fakeDB) IncrementAttempt(_ context.Context, phoneNumber string) (int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[phoneNumber]
	if !ok {
		return 0, goerror.ErrNotFound
	}
	rec.AttemptCount++
	f.records[phoneNumber] = rec
	return rec.AttemptCount, nil
}

func (f *fakeDB) DeleteRecord(_ context.Context, phoneNumber string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, phoneNumber)
	return nil
}

func (f *fakeDB) record(phoneNumber string) (entity.VerificationRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[phoneNumber]
	return rec, ok
}

type memCounter struct {
	mu    sync.Mutex
	clock *stepClock
	vals  map[string]int64
	exps  map[string]time.Time
	err   error
}

func newMemCounter(clock *stepClock) *memCounter {
	return &memCounter{
		clock: clock,
		vals:  make(map[string]int64),
		exps:  make(map[string]time.Time),
	}
}

func (c *memCounter) IncrementAndExpire(_ context.Context, key string, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return 0, c.err
	}

	if exp, ok := c.exps[key]; ok && c.clock.Now().After(exp) {
		delete(c.vals, key)
		delete(c.exps, key)
	}

	c.vals[key]++
	if c.vals[key] == 1 {
		c.exps[key] = c.clock.Now().Add(window)
	}
	return c.vals[key], nil
}

func (c *memCounter) TTL(_ context.Context, key string) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	exp, ok := c.exps[key]
	if !ok {
		return 0, nil
	}
	remaining := exp.Sub(c.clock.Now())
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

type fakeCodes struct {
	mu    sync.Mutex
	queue []string
}

func (f *fakeCodes) Generate(int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return "123456", nil
	}
	code := f.queue[0]
	f.queue = f.queue[1:]
	return code, nil
}

type fakeSMS struct {
	mu     sync.Mutex
	bodies []string
	err    error
}

func (f *fakeSMS) Send(_ context.Context, _, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.bodies = append(f.bodies, body)
	return nil
}

func (f *fakeSMS) Close() error { return nil }

func (f *fakeSMS) sent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bodies)
}

type fakeMessaging struct {
	mu       sync.Mutex
	issued   []OTPIssuedEvent
	verified []OTPVerifiedEvent
}

func (f *fakeMessaging) PublishOTPIssued(_ context.Context, msg OTPIssuedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued = append(f.issued, msg)
	return nil
}

func (f *fakeMessaging) PublishOTPVerified(_ context.Context, msg OTPVerifiedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verified = append(f.verified, msg)
	return nil
}

func (f *fakeMessaging) lastOutcome() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.verified) == 0 {
		return ""
	}
	return f.verified[len(f.verified)-1].Outcome
}

type fakeUID struct {
	mu   sync.Mutex
	next int64
}

func (f *fakeUID) Generate() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return f.next
}

type fakeJWT struct{}

func (fakeJWT) Generate(phoneNumber string) (string, error) { return "jwt-" + phoneNumber, nil }

func (fakeJWT) Verify(string) (jwt.Claims, error) { return jwt.Claims{}, nil }

type staticConfig struct{}

func (staticConfig) Close() error { return nil }

func (staticConfig) GetSecond(key string) time.Duration {
	if key == "modules.verification.code_ttl_seconds" {
		return 120 * time.Second
	}
	return 0
}

func (staticConfig) GetMinute(string) time.Duration { return 10 * time.Minute }
func (staticConfig) GetHour(string) time.Duration   { return 24 * time.Hour }
func (staticConfig) GetDay(string) time.Duration    { return 0 }

func (staticConfig) GetInt(key string) int {
	if key == "modules.verification.code_length" {
		return 6
	}
	return 0
}

func (staticConfig) GetInt32(key string) int32 {
	if key == "modules.verification.max_attempts" {
		return 5
	}
	return 0
}

func (staticConfig) GetInt64(key string) int64 {
	switch key {
	case "modules.verification.rate_ip_limit":
		return 5
	case "modules.verification.rate_phone_limit":
		return 2
	case "modules.verification.rate_phone_daily_limit":
		return 12
	default:
		return 0
	}
}

func (staticConfig) GetUint(string) uint               { return 0 }
func (staticConfig) GetUint16(string) uint16           { return 0 }
func (staticConfig) GetUint32(string) uint32           { return 0 }
func (staticConfig) GetUint64(string) uint64           { return 0 }
func (staticConfig) GetFloat32(string) float32         { return 0 }
func (staticConfig) GetFloat64(string) float64         { return 0 }
func (staticConfig) GetBool(string) bool               { return false }
func (staticConfig) GetString(string) string           { return "" }
func (staticConfig) GetBinary(string) []byte           { return nil }
func (staticConfig) GetArray(string) []string          { return nil }
func (staticConfig) GetMap(string) map[string]string   { return nil }

type fixture struct {
	uc      *Usecase
	db      *fakeDB
	counter *memCounter
	sms     *fakeSMS
	mq      *fakeMessaging
	codes   *fakeCodes
	clock   *stepClock
	hmac    hash.Hash
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator returned error: %v", err)
	}

	clock := &stepClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	db := newFakeDB()
	counter := newMemCounter(clock)
	sender := &fakeSMS{}
	mq := &fakeMessaging{}
	codes := &fakeCodes{}
	hmac := hash.NewHMACSHA256("test-secret")

	uc := New(Dependency{
		RepoDB:        db,
		RepoMessaging: mq,
		Limiter:       ratelimit.NewFixedWindow(counter),
		Validator:     v10,
		Config:        staticConfig{},
		HMAC:          hmac,
		Codes:         codes,
		Sender:        sender,
		UID:           &fakeUID{},
		Clock:         clock,
		JWT:           fakeJWT{},
		Instrument:    instrument.NewNoop(),
	})

	return &fixture{
		uc:      uc,
		db:      db,
		counter: counter,
		sms:     sender,
		mq:      mq,
		codes:   codes,
		clock:   clock,
		hmac:    hmac,
	}
}

func assertThrottled(t *testing.T, err error) time.Duration {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error = %v, want *goerror.Error", err)
	}
	if gerr.Code() != goerror.CodeTooManyRequest {
		t.Fatalf("error code = %v, want CodeTooManyRequest", gerr.Code())
	}
	return gerr.RetryAfter()
}

func assertInvalidCode(t *testing.T, err error) {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error = %v, want *goerror.Error", err)
	}
	if gerr.Msg() != "Invalid verification code" {
		t.Fatalf("error message = %q, want generic invalid code message", gerr.Msg())
	}
}

func TestIssueThenVerifySucceedsExactlyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.codes.queue = []string{"042137"}

	if err := f.uc.Issue(ctx, IssueInput{PhoneNumber: "+12025550123", ClientIP: "203.0.113.7"}); err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if f.sms.sent() != 1 {
		t.Fatalf("sms sent = %d, want 1", f.sms.sent())
	}

	out, err := f.uc.Verify(ctx, VerifyInput{PhoneNumber: "+12025550123", Code: "042137"})
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if out.AccessToken != "jwt-+12025550123" {
		t.Fatalf("access token = %q, want jwt-+12025550123", out.AccessToken)
	}

	// Single-use consumption: the same code never redeems twice.
	if _, err := f.uc.Verify(ctx, VerifyInput{PhoneNumber: "+12025550123", Code: "042137"}); err == nil {
		t.Fatal("second Verify succeeded, want failure")
	} else {
		assertInvalidCode(t, err)
	}
	if f.mq.lastOutcome() != OutcomeNotFound {
		t.Fatalf("last outcome = %q, want %q", f.mq.lastOutcome(), OutcomeNotFound)
	}
}

func TestReissueInvalidatesPreviousCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.codes.queue = []string{"111111", "222222"}

	if err := f.uc.Issue(ctx, IssueInput{PhoneNumber: "+12025550123", ClientIP: "203.0.113.7"}); err != nil {
		t.Fatalf("first Issue returned error: %v", err)
	}
	if err := f.uc.Issue(ctx, IssueInput{PhoneNumber: "+12025550123", ClientIP: "203.0.113.7"}); err != nil {
		t.Fatalf("second Issue returned error: %v", err)
	}

	if _, err := f.uc.Verify(ctx, VerifyInput{PhoneNumber: "+12025550123", Code: "111111"}); err == nil {
		t.Fatal("Verify with replaced code succeeded, want failure")
	}

	if _, err := f.uc.Verify(ctx, VerifyInput{PhoneNumber: "+12025550123", Code: "222222"}); err != nil {
		t.Fatalf("Verify with current code returned error: %v", err)
	}
}

func TestIssueThrottledPerIP(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	phones := []string{
		"+12025550100", "+12025550101", "+12025550102",
		"+12025550103", "+12025550104", "+12025550105",
	}

	for i := 0; i < 5; i++ {
		if err := f.uc.Issue(ctx, IssueInput{PhoneNumber: phones[i], ClientIP: "203.0.113.7"}); err != nil {
			t.Fatalf("Issue %d returned error: %v", i+1, err)
		}
	}

	err := f.uc.Issue(ctx, IssueInput{PhoneNumber: phones[5], ClientIP: "203.0.113.7"})
	if err == nil {
		t.Fatal("sixth Issue from same IP succeeded, want throttled")
	}
	if retryAfter := assertThrottled(t, err); retryAfter <= 0 {
		t.Fatalf("retry after = %v, want positive", retryAfter)
	}
}

func TestIssueThrottledPerPhone(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Distinct IPs keep the network-address quota out of the picture.
	ips := []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"}

	for i := 0; i < 2; i++ {
		if err := f.uc.Issue(ctx, IssueInput{PhoneNumber: "+12025550123", ClientIP: ips[i]}); err != nil {
			t.Fatalf("Issue %d returned error: %v", i+1, err)
		}
	}

	err := f.uc.Issue(ctx, IssueInput{PhoneNumber: "+12025550123", ClientIP: ips[2]})
	if err == nil {
		t.Fatal("third Issue for same phone succeeded, want throttled")
	}
	assertThrottled(t, err)
}

func TestIssueFailsClosedOnCounterError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.counter.err = io.ErrUnexpectedEOF

	err := f.uc.Issue(ctx, IssueInput{PhoneNumber: "+12025550123", ClientIP: "203.0.113.7"})
	if err == nil {
		t.Fatal("Issue succeeded with broken counter, want throttled")
	}
	assertThrottled(t, err)

	if f.sms.sent() != 0 {
		t.Fatalf("sms sent = %d, want 0", f.sms.sent())
	}
	if _, ok := f.db.record("+12025550123"); ok {
		t.Fatal("record stored for throttled request")
	}
}

func TestIssueRejectsInvalidPhone(t *testing.T) {
	f := newFixture(t)

	for _, phone := range []string{"", "12025550123", "+02025550123", "not-a-phone"} {
		err := f.uc.Issue(context.Background(), IssueInput{PhoneNumber: phone, ClientIP: "203.0.113.7"})

		var gerr *goerror.Error
		if !errors.As(err, &gerr) {
			t.Fatalf("phone %q: error = %v, want *goerror.Error", phone, err)
		}
		if gerr.Type() != goerror.TypeValidation {
			t.Fatalf("phone %q: error type = %v, want TypeValidation", phone, gerr.Type())
		}
	}
}

func TestVerifyLockoutAfterMaxFailedAttempts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.codes.queue = []string{"042137"}

	if err := f.uc.Issue(ctx, IssueInput{PhoneNumber: "+12025550123", ClientIP: "203.0.113.7"}); err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := f.uc.Verify(ctx, VerifyInput{PhoneNumber: "+12025550123", Code: "000000"}); err == nil {
			t.Fatalf("wrong code attempt %d succeeded", i+1)
		}
	}
	if f.mq.lastOutcome() != OutcomeLocked {
		t.Fatalf("last outcome = %q, want %q", f.mq.lastOutcome(), OutcomeLocked)
	}

	// Lockout deletes the record, so even the correct code is rejected.
	if _, err := f.uc.Verify(ctx, VerifyInput{PhoneNumber: "+12025550123", Code: "042137"}); err == nil {
		t.Fatal("Verify after lockout succeeded, want failure")
	} else {
		assertInvalidCode(t, err)
	}
}

func TestVerifySucceedsWithinAttemptLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.codes.queue = []string{"042137"}

	if err := f.uc.Issue(ctx, IssueInput{PhoneNumber: "+12025550123", ClientIP: "203.0.113.7"}); err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	for i := 0; i < 4; i++ {
		if _, err := f.uc.Verify(ctx, VerifyInput{PhoneNumber: "+12025550123", Code: "999999"}); err == nil {
			t.Fatalf("wrong code attempt %d succeeded", i+1)
		}
	}

	if _, err := f.uc.Verify(ctx, VerifyInput{PhoneNumber: "+12025550123", Code: "042137"}); err != nil {
		t.Fatalf("Verify within attempt limit returned error: %v", err)
	}
}

func TestVerifyExpiredCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.codes.queue = []string{"042137"}

	if err := f.uc.Issue(ctx, IssueInput{PhoneNumber: "+12025550123", ClientIP: "203.0.113.7"}); err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	f.clock.Advance(121 * time.Second)

	if _, err := f.uc.Verify(ctx, VerifyInput{PhoneNumber: "+12025550123", Code: "042137"}); err == nil {
		t.Fatal("Verify after expiry succeeded, want failure")
	} else {
		assertInvalidCode(t, err)
	}
	if f.mq.lastOutcome() != OutcomeExpired {
		t.Fatalf("last outcome = %q, want %q", f.mq.lastOutcome(), OutcomeExpired)
	}

	// Expiry cleanup removed the record.
	if _, ok := f.db.record("+12025550123"); ok {
		t.Fatal("expired record still stored after verification attempt")
	}
}

func TestConcurrentIssuanceKeepsOneRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.codes.queue = []string{"111111", "222222"}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Go(func() {
			if err := f.uc.Issue(ctx, IssueInput{PhoneNumber: "+12025550123", ClientIP: "203.0.113.7"}); err != nil {
				t.Errorf("Issue returned error: %v", err)
			}
		})
	}
	wg.Wait()

	rec, ok := f.db.record("+12025550123")
	if !ok {
		t.Fatal("no record stored after concurrent issuance")
	}

	matchesFirst := f.hmac.Verify(rec.HashedCode, "111111")
	matchesSecond := f.hmac.Verify(rec.HashedCode, "222222")
	if matchesFirst == matchesSecond {
		t.Fatalf("stored digest matches first=%v second=%v, want exactly one", matchesFirst, matchesSecond)
	}
}
