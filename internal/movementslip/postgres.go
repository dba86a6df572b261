package movementslip

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("prisoner-profile.movementslip")

type rowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps slips in the movement_slips table.
type PostgresStore struct {
	pool rowQuerier
	now  func() time.Time
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("movementslip: pgx pool required")
	}
	return newPostgresStoreWithExec(pool)
}

func newPostgresStoreWithExec(exec rowQuerier) *PostgresStore {
	if exec == nil {
		panic("movementslip: exec required")
	}
	return &PostgresStore{pool: exec, now: time.Now}
}

// Create inserts the slip. Re-creating a slip for the same booking and owner
// replaces its details and makes it viewable again.
func (s *PostgresStore) Create(ctx context.Context, slip Slip) error {
	ctx, span := tracer.Start(ctx, "movementslip.create")
	defer span.End()
	span.SetAttributes(attribute.String("booking_id", slip.BookingID))

	if slip.CreatedAt.IsZero() {
		slip.CreatedAt = s.now().UTC()
	}
	details, err := json.Marshal(slip)
	if err != nil {
		return fmt.Errorf("movementslip: encode: %w", err)
	}

	query := `
		INSERT INTO movement_slips (booking_id, owner, prisoner_number, details, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (booking_id, owner)
		DO UPDATE SET prisoner_number = EXCLUDED.prisoner_number, details = EXCLUDED.details,
			created_at = EXCLUDED.created_at, shown_at = NULL
	`
	pn := normalisePrisonerNumber(slip.PrisonerNumber)
	if _, err := s.pool.Exec(ctx, query, slip.BookingID, slip.Owner, pn, details, slip.CreatedAt); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("movementslip: create: %w", err)
	}
	return nil
}

// Consume marks the slip shown and returns it. The WHERE clause makes the
// check-and-mark a single statement.
func (s *PostgresStore) Consume(ctx context.Context, bookingID, owner, prisonerNumber string) (*Slip, error) {
	ctx, span := tracer.Start(ctx, "movementslip.consume")
	defer span.End()
	span.SetAttributes(attribute.String("booking_id", bookingID))

	query := `
		UPDATE movement_slips
		SET shown_at = $4
		WHERE booking_id = $1 AND owner = $2 AND prisoner_number = $3 AND shown_at IS NULL
		RETURNING details
	`
	var details []byte
	pn := normalisePrisonerNumber(prisonerNumber)
	if err := s.pool.QueryRow(ctx, query, bookingID, owner, pn, s.now().UTC()).Scan(&details); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("movementslip: consume: %w", err)
	}

	var slip Slip
	if err := json.Unmarshal(details, &slip); err != nil {
		return nil, fmt.Errorf("movementslip: decode: %w", err)
	}
	return &slip, nil
}
