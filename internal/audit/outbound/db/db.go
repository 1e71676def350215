package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/goverify/internal/audit/entity"
	"github.com/shandysiswandi/goverify/internal/pkg/goerror"
	"github.com/shandysiswandi/goverify/internal/pkg/instrument"
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

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("audit.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *DB) CreateEvent(ctx context.Context, in entity.AuditEvent) (err error) {
	ctx, span := s.startSpan(ctx, "CreateEvent")
	defer func() { s.endSpan(span, err) }()

	query := `
		INSERT INTO verification_audit
			(id, event_type, phone_number, request_ip, outcome, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = s.conn.Exec(ctx, query,
		in.ID, in.EventType, in.PhoneNumber, in.RequestIP, in.Outcome, in.OccurredAt, in.CreatedAt)
	err = s.mapError(err)
	return err
}

func (s *DB) ListEvents(ctx context.Context, filter entity.ListFilter) (out []entity.AuditEvent, err error) {
	ctx, span := s.startSpan(ctx, "ListEvents")
	defer func() { s.endSpan(span, err) }()

	query := `
		SELECT id, event_type, phone_number, request_ip, outcome, occurred_at, created_at
		FROM verification_audit
		WHERE ($1 = '' OR phone_number = $1)
		ORDER BY occurred_at DESC
		LIMIT $2`

	rows, err := s.conn.Query(ctx, query, filter.PhoneNumber, filter.Limit)
	if err != nil {
		err = s.mapError(err)
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ev entity.AuditEvent
		if err = rows.Scan(&ev.ID, &ev.EventType, &ev.PhoneNumber, &ev.RequestIP,
			&ev.Outcome, &ev.OccurredAt, &ev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
