package appointments

import (
	"net/http"

	"github.com/wolfman30/prisoner-profile/internal/flash"
	"github.com/wolfman30/prisoner-profile/internal/movementslip"
	"github.com/wolfman30/prisoner-profile/internal/prisonapi"
	"github.com/wolfman30/prisoner-profile/internal/reference"
	"github.com/wolfman30/prisoner-profile/internal/schedule"
)

// Page template names.
const (
	PageAppointmentForm = "appointment_form"
	PageCourtHearing    = "court_hearing"
	PageConfirmation    = "confirmation"
	PageMovementSlip    = "movement_slip"
	PageNotFound        = "not_found"
	PageError           = "error"
)

// Renderer writes a named page.
type Renderer interface {
	Render(w http.ResponseWriter, status int, page string, data any)
}

type formErrors []flash.FieldError

// ErrorFor returns the message for field, or "".
func (e formErrors) ErrorFor(field string) string {
	return flash.Message{Errors: e}.ErrorFor(field)
}

// FormPage is the view model of the add/edit appointment form.
type FormPage struct {
	Prisoner             prisonapi.Prisoner
	Draft                *Draft
	Data                 *reference.AppointmentData
	Visibility           FieldVisibility
	MeetingTypesAsRadios bool
	RepeatPeriods        []RepeatPeriod
	Errors               formErrors
	Notice               string
	PrisonerSchedule     schedule.Table
	LocationSchedule     *schedule.Table
	Action               string
	Editing              bool
}

// Hidden reports whether an optional group starts hidden. Until a type is
// chosen every group is shown, so the fields of whichever type is picked can
// be filled in on the first submission.
func (p FormPage) Hidden(group string) bool {
	if p.Draft == nil || p.Draft.AppointmentType == "" {
		return false
	}
	return !p.Visibility.Shows(group)
}

// GroupsFor lists the optional groups an appointment type shows.
func (p FormPage) GroupsFor(appointmentType string) string {
	return VisibilityFor(appointmentType).Groups()
}

// HearingPage is the view model of the court hearing step.
type HearingPage struct {
	Prisoner     prisonapi.Prisoner
	Draft        *Draft
	Data         *reference.AppointmentData
	Durations    []int
	Errors       formErrors
	Notice       string
	PreSchedule  *schedule.Table
	PostSchedule *schedule.Table
	Action       string
	BackLink     string
}

// ConfirmationPage is the view model of the booking confirmation.
type ConfirmationPage struct {
	Prisoner        prisonapi.Prisoner
	Summary         Summary
	Editing         bool
	MovementSlipURL string
	ProfileURL      string
}

// SlipPage is the view model of the printable movement slip.
type SlipPage struct {
	Slip *movementslip.Slip
}
