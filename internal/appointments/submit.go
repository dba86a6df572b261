package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/wolfman30/prisoner-profile/internal/compliance"
	"github.com/wolfman30/prisoner-profile/internal/observability/metrics"
	"github.com/wolfman30/prisoner-profile/internal/prisonapi"
	"github.com/wolfman30/prisoner-profile/internal/tenancy"
	"github.com/wolfman30/prisoner-profile/internal/videolink"
	"github.com/wolfman30/prisoner-profile/pkg/logging"
)

// ErrNothingCreated is returned when the prison API accepts a create but
// reports no appointments.
var ErrNothingCreated = errors.New("appointments: no appointment created")

// PrisonBooker creates and amends prison appointments.
type PrisonBooker interface {
	CreateAppointments(ctx context.Context, bookingID int64, req prisonapi.AppointmentRequest) ([]prisonapi.CreatedAppointment, error)
	UpdateAppointment(ctx context.Context, appointmentID int64, req prisonapi.AppointmentRequest) error
}

// VideoLinkBooker creates and amends video link bookings.
type VideoLinkBooker interface {
	CreateProbationBooking(ctx context.Context, req videolink.ProbationBookingRequest) (int64, error)
	CreateCourtBooking(ctx context.Context, req videolink.CourtBookingRequest) (int64, error)
	AmendProbationBooking(ctx context.Context, bookingID int64, req videolink.ProbationBookingRequest) error
	AmendCourtBooking(ctx context.Context, bookingID int64, req videolink.CourtBookingRequest) error
}

// Auditor records staff actions.
type Auditor interface {
	Log(ctx context.Context, action compliance.AuditAction, who, prisonerNumber string, details any) error
}

// Submitter sends a built BookingRequest to the one endpoint that serves it.
// Failures are returned as-is and never retried.
type Submitter struct {
	prison    PrisonBooker
	videoLink VideoLinkBooker
	audit     Auditor
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
}

// NewSubmitter creates a submitter over the prison and video link APIs.
func NewSubmitter(prison PrisonBooker, videoLink VideoLinkBooker, audit Auditor, m *metrics.BookingMetrics, logger *logging.Logger) *Submitter {
	if logger == nil {
		logger = logging.Default()
	}
	return &Submitter{prison: prison, videoLink: videoLink, audit: audit, metrics: m, logger: logger}
}

// Submit creates or amends the booking and returns its id.
func (s *Submitter) Submit(ctx context.Context, prisonerNumber string, req BookingRequest) (int64, error) {
	id, action, err := s.send(ctx, req)
	if err != nil {
		s.metrics.ObserveSubmission(req.Variant(), "failed")
		return 0, err
	}

	outcome := "created"
	if action == compliance.ActionAppointmentAmended || action == compliance.ActionVideoLinkAmended {
		outcome = "amended"
	}
	s.metrics.ObserveSubmission(req.Variant(), outcome)

	who := tenancy.Username(ctx)
	s.logger.Info("booking submitted", "variant", req.Variant(), "outcome", outcome, "booking_id", id, "prisoner_number", prisonerNumber, "staff", who)
	if s.audit != nil {
		details := map[string]any{"variant": req.Variant(), "bookingId": id}
		if legacy, ok := req.(LegacyAppointmentRequest); ok && legacy.Body.Comment != "" {
			details["comment"] = compliance.Redact(legacy.Body.Comment)
		}
		if err := s.audit.Log(ctx, action, who, prisonerNumber, details); err != nil {
			s.logger.Error("failed to audit booking", "error", err, "booking_id", id)
		}
	}
	return id, nil
}

func (s *Submitter) send(ctx context.Context, req BookingRequest) (int64, compliance.AuditAction, error) {
	switch r := req.(type) {
	case LegacyAppointmentRequest:
		if r.AppointmentID != 0 {
			if err := s.prison.UpdateAppointment(ctx, r.AppointmentID, r.Body); err != nil {
				return 0, "", fmt.Errorf("appointments: amend appointment: %w", err)
			}
			return r.AppointmentID, compliance.ActionAppointmentAmended, nil
		}
		created, err := s.prison.CreateAppointments(ctx, r.BookingID, r.Body)
		if err != nil {
			return 0, "", fmt.Errorf("appointments: create appointment: %w", err)
		}
		if len(created) == 0 {
			return 0, "", ErrNothingCreated
		}
		return created[0].ID, compliance.ActionAppointmentCreated, nil

	case ProbationBookingRequest:
		if r.VideoBookingID != 0 {
			if err := s.videoLink.AmendProbationBooking(ctx, r.VideoBookingID, r.Body); err != nil {
				return 0, "", fmt.Errorf("appointments: amend probation booking: %w", err)
			}
			return r.VideoBookingID, compliance.ActionVideoLinkAmended, nil
		}
		id, err := s.videoLink.CreateProbationBooking(ctx, r.Body)
		if err != nil {
			return 0, "", fmt.Errorf("appointments: create probation booking: %w", err)
		}
		return id, compliance.ActionVideoLinkBooked, nil

	case CourtBookingRequest:
		if r.VideoBookingID != 0 {
			if err := s.videoLink.AmendCourtBooking(ctx, r.VideoBookingID, r.Body); err != nil {
				return 0, "", fmt.Errorf("appointments: amend court booking: %w", err)
			}
			return r.VideoBookingID, compliance.ActionVideoLinkAmended, nil
		}
		id, err := s.videoLink.CreateCourtBooking(ctx, r.Body)
		if err != nil {
			return 0, "", fmt.Errorf("appointments: create court booking: %w", err)
		}
		return id, compliance.ActionVideoLinkBooked, nil
	}
	return 0, "", fmt.Errorf("appointments: unsupported request %T", req)
}
