package appointments

import (
	"fmt"
	"strconv"
	"time"

	"github.com/wolfman30/prisoner-profile/internal/prisonapi"
	"github.com/wolfman30/prisoner-profile/internal/reference"
	"github.com/wolfman30/prisoner-profile/internal/videolink"
)

// BookingRequest is exactly one of LegacyAppointmentRequest,
// ProbationBookingRequest or CourtBookingRequest. The set is closed.
type BookingRequest interface {
	Variant() string
	bookingRequest()
}

// LegacyAppointmentRequest books a prison appointment series.
type LegacyAppointmentRequest struct {
	BookingID     int64
	AppointmentID int64
	Body          prisonapi.AppointmentRequest
}

// ProbationBookingRequest books a probation meeting over video link.
type ProbationBookingRequest struct {
	VideoBookingID int64
	Body           videolink.ProbationBookingRequest
}

// CourtBookingRequest books a court hearing over video link.
type CourtBookingRequest struct {
	VideoBookingID int64
	Body           videolink.CourtBookingRequest
}

func (LegacyAppointmentRequest) Variant() string { return "legacy" }
func (ProbationBookingRequest) Variant() string  { return "probation" }
func (CourtBookingRequest) Variant() string      { return "court" }

func (LegacyAppointmentRequest) bookingRequest() {}
func (ProbationBookingRequest) bookingRequest()  {}
func (CourtBookingRequest) bookingRequest()      {}

// BuildRequest picks the request variant from the draft's category.
func BuildRequest(d *Draft, data *reference.AppointmentData, loc *time.Location) (BookingRequest, error) {
	switch d.Category() {
	case CategoryStandard:
		return buildLegacy(d, loc)
	case CategoryProbation:
		return buildProbation(d, data, loc)
	case CategoryCourt:
		return buildCourt(d, data, loc)
	}
	return nil, fmt.Errorf("appointments: unhandled category %q", d.Category())
}

func buildLegacy(d *Draft, loc *time.Location) (LegacyAppointmentRequest, error) {
	start, end, err := d.window(loc)
	if err != nil {
		return LegacyAppointmentRequest{}, err
	}
	locationID, err := strconv.ParseInt(d.Location, 10, 64)
	if err != nil {
		return LegacyAppointmentRequest{}, fmt.Errorf("appointments: location %q: %w", d.Location, err)
	}

	body := prisonapi.AppointmentRequest{
		AppointmentType: d.AppointmentType,
		LocationID:      locationID,
		StartTime:       start.Format(prisonapi.DateTimeLayout),
		Comment:         d.Comment,
	}
	if end != nil {
		body.EndTime = end.Format(prisonapi.DateTimeLayout)
	}
	if d.Recurring() {
		count, err := strconv.Atoi(d.RepeatCount)
		if err != nil {
			return LegacyAppointmentRequest{}, fmt.Errorf("appointments: repeat count %q: %w", d.RepeatCount, err)
		}
		body.Repeat = &prisonapi.Repeat{Period: d.RepeatPeriod, Count: count}
	}

	return LegacyAppointmentRequest{
		BookingID:     d.Prisoner.BookingID,
		AppointmentID: d.AppointmentID,
		Body:          body,
	}, nil
}

func buildProbation(d *Draft, data *reference.AppointmentData, loc *time.Location) (ProbationBookingRequest, error) {
	start, end, err := d.window(loc)
	if err != nil {
		return ProbationBookingRequest{}, err
	}
	if end == nil {
		return ProbationBookingRequest{}, fmt.Errorf("appointments: probation meeting needs an end time")
	}
	room, ok := data.FindLocation(d.Location)
	if !ok {
		return ProbationBookingRequest{}, fmt.Errorf("appointments: unknown location %q", d.Location)
	}

	leg := Leg{Type: videolink.AppointmentProbation, LocationKey: room.Key, Start: start, End: *end}
	body := videolink.ProbationBookingRequest{
		Prisoners:            []videolink.PrisonerAppointments{d.prisonerBlock(leg)},
		ProbationTeamCode:    d.ProbationTeam,
		ProbationMeetingType: d.MeetingType,
		NotesForStaff:        d.NotesForStaff,
		NotesForPrisoners:    d.NotesForPrisoners,
	}
	if d.OfficerKnown() {
		body.AdditionalBookingDetails = &videolink.AdditionalBookingDetails{
			ContactName:   d.OfficerFullName,
			ContactEmail:  d.OfficerEmail,
			ContactNumber: d.OfficerPhone,
		}
	}
	return ProbationBookingRequest{VideoBookingID: d.VideoBookingID, Body: body}, nil
}

func buildCourt(d *Draft, data *reference.AppointmentData, loc *time.Location) (CourtBookingRequest, error) {
	legs, err := CourtLegs(d, data, loc)
	if err != nil {
		return CourtBookingRequest{}, err
	}

	body := videolink.CourtBookingRequest{
		Prisoners:         []videolink.PrisonerAppointments{d.prisonerBlock(legs...)},
		CourtCode:         d.Court,
		CourtHearingType:  d.HearingType,
		NotesForStaff:     d.NotesForStaff,
		NotesForPrisoners: d.NotesForPrisoners,
	}
	if d.KnowVideoLink == yes {
		body.VideoLinkURL = d.VideoLinkURL
		body.HmctsNumber = d.CVPNumber
	}
	if d.GuestPinRequired == yes {
		body.GuestPin = d.GuestPin
	}
	return CourtBookingRequest{VideoBookingID: d.VideoBookingID, Body: body}, nil
}

func (d *Draft) prisonerBlock(legs ...Leg) videolink.PrisonerAppointments {
	appts := make([]videolink.Appointment, 0, len(legs))
	for _, l := range legs {
		appts = append(appts, l.Appointment())
	}
	return videolink.PrisonerAppointments{
		PrisonCode:     d.Prisoner.PrisonID,
		PrisonerNumber: d.Prisoner.PrisonerNumber,
		Appointments:   appts,
	}
}
