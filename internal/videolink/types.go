package videolink

const (
	BookingTypeCourt     = "COURT"
	BookingTypeProbation = "PROBATION"

	AppointmentCourtPre  = "VLB_COURT_PRE"
	AppointmentCourtMain = "VLB_COURT_MAIN"
	AppointmentCourtPost = "VLB_COURT_POST"
	AppointmentProbation = "VLB_PROBATION"

	GroupCourtHearingType     = "COURT_HEARING_TYPE"
	GroupProbationMeetingType = "PROBATION_MEETING_TYPE"
)

// Code is a court, probation team or reference code.
type Code struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Appointment is one leg of a booking in the prison.
type Appointment struct {
	Type        string `json:"type"`
	LocationKey string `json:"locationKey"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
}

// PrisonerAppointments groups the legs booked for one prisoner.
type PrisonerAppointments struct {
	PrisonCode     string        `json:"prisonCode"`
	PrisonerNumber string        `json:"prisonerNumber"`
	Appointments   []Appointment `json:"appointments"`
}

// AdditionalBookingDetails carries probation officer contact details.
type AdditionalBookingDetails struct {
	ContactName   string `json:"contactName"`
	ContactEmail  string `json:"contactEmail,omitempty"`
	ContactNumber string `json:"contactNumber,omitempty"`
}

// ProbationBookingRequest creates or amends a probation meeting.
// Blank notes are omitted from the payload.
type ProbationBookingRequest struct {
	BookingType              string                    `json:"bookingType"`
	Prisoners                []PrisonerAppointments    `json:"prisoners"`
	ProbationTeamCode        string                    `json:"probationTeamCode"`
	ProbationMeetingType     string                    `json:"probationMeetingType"`
	AdditionalBookingDetails *AdditionalBookingDetails `json:"additionalBookingDetails,omitempty"`
	NotesForStaff            string                    `json:"notesForStaff,omitempty"`
	NotesForPrisoners        string                    `json:"notesForPrisoners,omitempty"`
}

// CourtBookingRequest creates or amends a court hearing.
// At most one of VideoLinkURL and HmctsNumber is set.
type CourtBookingRequest struct {
	BookingType       string                 `json:"bookingType"`
	Prisoners         []PrisonerAppointments `json:"prisoners"`
	CourtCode         string                 `json:"courtCode"`
	CourtHearingType  string                 `json:"courtHearingType"`
	VideoLinkURL      string                 `json:"videoLinkUrl,omitempty"`
	HmctsNumber       string                 `json:"hmctsNumber,omitempty"`
	GuestPin          string                 `json:"guestPin,omitempty"`
	NotesForStaff     string                 `json:"notesForStaff,omitempty"`
	NotesForPrisoners string                 `json:"notesForPrisoners,omitempty"`
}

// Booking is an existing video link booking.
type Booking struct {
	ID                       int64                     `json:"videoLinkBookingId"`
	BookingType              string                    `json:"bookingType"`
	Prisoners                []PrisonerAppointments    `json:"prisoners"`
	CourtCode                string                    `json:"courtCode,omitempty"`
	CourtHearingType         string                    `json:"courtHearingType,omitempty"`
	ProbationTeamCode        string                    `json:"probationTeamCode,omitempty"`
	ProbationMeetingType     string                    `json:"probationMeetingType,omitempty"`
	VideoLinkURL             string                    `json:"videoLinkUrl,omitempty"`
	HmctsNumber              string                    `json:"hmctsNumber,omitempty"`
	GuestPin                 string                    `json:"guestPin,omitempty"`
	NotesForStaff            string                    `json:"notesForStaff,omitempty"`
	NotesForPrisoners        string                    `json:"notesForPrisoners,omitempty"`
	AdditionalBookingDetails *AdditionalBookingDetails `json:"additionalBookingDetails,omitempty"`
	CreatedBy                string                    `json:"createdBy,omitempty"`
}

// AppointmentsFor returns the legs booked for prisonerNumber.
func (b Booking) AppointmentsFor(prisonerNumber string) []Appointment {
	for _, p := range b.Prisoners {
		if p.PrisonerNumber == prisonerNumber {
			return p.Appointments
		}
	}
	return nil
}

type createdResponse struct {
	ID int64 `json:"videoLinkBookingId"`
}
