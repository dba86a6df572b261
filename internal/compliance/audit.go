// Package compliance records an immutable audit trail of staff actions
// against prisoner records.
package compliance

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditAction names what a member of staff did.
type AuditAction string

const (
	// ActionAppointmentCreated is logged when a prison appointment series is created.
	ActionAppointmentCreated AuditAction = "appointment.created"
	// ActionAppointmentAmended is logged when a prison appointment is changed.
	ActionAppointmentAmended AuditAction = "appointment.amended"
	// ActionVideoLinkBooked is logged when a court or probation video link is booked.
	ActionVideoLinkBooked AuditAction = "video_link.booked"
	// ActionVideoLinkAmended is logged when a video link booking is changed.
	ActionVideoLinkAmended AuditAction = "video_link.amended"
	// ActionMovementSlipViewed is logged when a movement slip is printed.
	ActionMovementSlipViewed AuditAction = "movement_slip.viewed"
	// ActionPersonalDetailUpdated is logged when a personal detail is edited.
	ActionPersonalDetailUpdated AuditAction = "personal_detail.updated"
	// ActionContactAdded is logged when a phone number or email is added.
	ActionContactAdded AuditAction = "contact.added"
)

// AuditEvent represents an immutable audit record.
type AuditEvent struct {
	ID        string          `json:"id"`
	Action    AuditAction     `json:"action"`
	Who       string          `json:"who"`
	Subject   string          `json:"subject"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// AuditService writes audit events to prisoner_audit_events.
type AuditService struct {
	db *sql.DB
}

// NewAuditService creates a new audit service. A nil db disables auditing.
func NewAuditService(db *sql.DB) *AuditService {
	return &AuditService{db: db}
}

// Enabled reports whether events are persisted.
func (s *AuditService) Enabled() bool {
	return s != nil && s.db != nil
}

// LogEvent records an audit event.
func (s *AuditService) LogEvent(ctx context.Context, event AuditEvent) error {
	if !s.Enabled() {
		return nil
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if len(event.Details) == 0 {
		event.Details = json.RawMessage(`{}`)
	}

	query := `
		INSERT INTO prisoner_audit_events (
			id, action, who, subject, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.Action,
		event.Who,
		event.Subject,
		[]byte(event.Details),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("compliance: failed to log audit event: %w", err)
	}

	return nil
}

// Log records action by who against the prisoner, with details encoded as JSON.
func (s *AuditService) Log(ctx context.Context, action AuditAction, who, prisonerNumber string, details any) error {
	var raw json.RawMessage
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("compliance: encode details: %w", err)
		}
		raw = b
	}
	return s.LogEvent(ctx, AuditEvent{
		Action:  action,
		Who:     who,
		Subject: prisonerNumber,
		Details: raw,
	})
}

// QueryEvents retrieves audit events with filters.
func (s *AuditService) QueryEvents(ctx context.Context, filter AuditFilter) ([]AuditEvent, error) {
	if !s.Enabled() {
		return nil, nil
	}
	query := `
		SELECT id, action, who, subject, details, created_at
		FROM prisoner_audit_events
		WHERE subject = $1
	`
	args := []interface{}{filter.Subject}
	argIdx := 2

	if filter.Who != "" {
		query += fmt.Sprintf(" AND who = $%d", argIdx)
		args = append(args, filter.Who)
		argIdx++
	}
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", argIdx)
		args = append(args, filter.Action)
		argIdx++
	}
	if !filter.StartTime.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, filter.StartTime)
		argIdx++
	}
	if !filter.EndTime.IsZero() {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, filter.EndTime)
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("compliance: failed to query audit events: %w", err)
	}
	defer rows.Close()

	var events []AuditEvent
	for rows.Next() {
		var e AuditEvent
		var details []byte
		if err := rows.Scan(&e.ID, &e.Action, &e.Who, &e.Subject, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("compliance: failed to scan audit event: %w", err)
		}
		e.Details = details
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("compliance: failed to read audit events: %w", err)
	}

	return events, nil
}

// AuditFilter specifies criteria for querying audit events.
type AuditFilter struct {
	Subject   string
	Who       string
	Action    AuditAction
	StartTime time.Time
	EndTime   time.Time
	Limit     int
	Offset    int
}
