package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/goverify/internal/pkg/goerror"
	"github.com/shandysiswandi/goverify/internal/pkg/instrument"
	"github.com/shandysiswandi/goverify/internal/verification/entity"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("verification.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// UpsertRecord replaces any existing record for the phone number entirely,
// resetting the attempt count along with the code and expiry.
func (s *DB) UpsertRecord(ctx context.Context, in entity.VerificationRecord) (err error) {
	ctx, span := s.startSpan(ctx, "UpsertRecord")
	defer func() { s.endSpan(span, err) }()

	query := `
		INSERT INTO verification_records
			(id, phone_number, hashed_code, expires_at, attempt_count, last_issued_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (phone_number) DO UPDATE SET
			hashed_code    = EXCLUDED.hashed_code,
			expires_at     = EXCLUDED.expires_at,
			attempt_count  = EXCLUDED.attempt_count,
			last_issued_at = EXCLUDED.last_issued_at`

	_, err = s.conn.Exec(ctx, query,
		in.ID, in.PhoneNumber, in.HashedCode, in.ExpiresAt, in.AttemptCount, in.LastIssuedAt)
	err = s.mapError(err)
	return err
}

func (s *DB) GetRecordByPhone(ctx context.Context, phoneNumber string) (out *entity.VerificationRecord, err error) {
	ctx, span := s.startSpan(ctx, "GetRecordByPhone")
	defer func() { s.endSpan(span, err) }()

	query := `
		SELECT id, phone_number, hashed_code, expires_at, attempt_count, last_issued_at
		FROM verification_records
		WHERE phone_number = $1`

	var rec entity.VerificationRecord
	err = s.conn.QueryRow(ctx, query, phoneNumber).Scan(
		&rec.ID, &rec.PhoneNumber, &rec.HashedCode,
		&rec.ExpiresAt, &rec.AttemptCount, &rec.LastIssuedAt)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}

	return &rec, nil
}

// IncrementAttempt bumps the failed-attempt counter atomically in SQL and
// returns the new value.
func (s *DB) IncrementAttempt(ctx context.Context, phoneNumber string) (count int32, err error) {
	ctx, span := s.startSpan(ctx, "IncrementAttempt")
	defer func() { s.endSpan(span, err) }()

	query := `
		UPDATE verification_records
		SET attempt_count = attempt_count + 1
		WHERE phone_number = $1
		RETURNING attempt_count`

	err = s.conn.QueryRow(ctx, query, phoneNumber).Scan(&count)
	if err != nil {
		err = s.mapError(err)
		return 0, err
	}

	return count, nil
}

func (s *DB) DeleteRecord(ctx context.Context, phoneNumber string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteRecord")
	defer func() { s.endSpan(span, err) }()

	query := `DELETE FROM verification_records WHERE phone_number = $1`

	_, err = s.conn.Exec(ctx, query, phoneNumber)
	err = s.mapError(err)
	return err
}
