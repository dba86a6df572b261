// Package appointments implements the add/edit appointment journey: the
// appointment form, the court hearing step, booking submission, the
// confirmation page and the single-view movement slip.
package appointments

import (
	"net/url"
	"strings"

	"github.com/wolfman30/prisoner-profile/internal/prisonapi"
)

// Category decides which fields a booking uses and which API receives it.
type Category string

const (
	CategoryStandard  Category = "standard"
	CategoryProbation Category = "probation"
	CategoryCourt     Category = "court"
)

const (
	TypeCourtHearing     = "VLB"
	TypeProbationMeeting = "VLPM"
	TypeLegalAdviser     = "VLLA"
	TypeOtherVideoLink   = "VLOO"
)

// CategoryOf maps an appointment type code to its category.
func CategoryOf(appointmentType string) Category {
	switch appointmentType {
	case TypeCourtHearing:
		return CategoryCourt
	case TypeProbationMeeting:
		return CategoryProbation
	default:
		return CategoryStandard
	}
}

// IsVideoLink reports whether the type is held over video link.
func IsVideoLink(appointmentType string) bool {
	switch appointmentType {
	case TypeCourtHearing, TypeProbationMeeting, TypeLegalAdviser, TypeOtherVideoLink:
		return true
	}
	return false
}

const (
	yes = "yes"
	no  = "no"
)

// Draft is one in-progress booking journey.
type Draft struct {
	AppointmentType string `json:"appointmentType"`
	Location        string `json:"location"`
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	Comment         string `json:"comment"`

	Repeats      string `json:"repeats"`
	RepeatPeriod string `json:"repeatPeriod"`
	RepeatCount  string `json:"repeatCount"`

	ProbationTeam       string `json:"probationTeam"`
	MeetingType         string `json:"meetingType"`
	OfficerDetailsKnown string `json:"officerDetailsKnown"`
	OfficerFullName     string `json:"officerFullName"`
	OfficerEmail        string `json:"officerEmail"`
	OfficerPhone        string `json:"officerPhone"`

	NotesForStaff     string `json:"notesForStaff"`
	NotesForPrisoners string `json:"notesForPrisoners"`

	Court            string `json:"court"`
	HearingType      string `json:"hearingType"`
	PreRequired      string `json:"preRequired"`
	PreLocation      string `json:"preLocation"`
	PreDuration      string `json:"preDuration"`
	PostRequired     string `json:"postRequired"`
	PostLocation     string `json:"postLocation"`
	PostDuration     string `json:"postDuration"`
	KnowVideoLink    string `json:"knowVideoLink"`
	CVPNumber        string `json:"cvpNumber"`
	VideoLinkURL     string `json:"videoLinkUrl"`
	GuestPinRequired string `json:"guestPinRequired"`
	GuestPin         string `json:"guestPin"`

	// AppointmentID is set when amending a prison appointment,
	// VideoBookingID when amending a video link booking.
	AppointmentID  int64 `json:"appointmentId,omitempty"`
	VideoBookingID int64 `json:"videoBookingId,omitempty"`

	Prisoner prisonapi.Prisoner `json:"prisoner"`

	// BookingID is the id returned by the upstream API once submitted.
	BookingID int64 `json:"bookingId,omitempty"`
}

// Category of the draft's appointment type.
func (d *Draft) Category() Category {
	return CategoryOf(d.AppointmentType)
}

// Editing reports whether the journey amends an existing booking.
func (d *Draft) Editing() bool {
	return d.AppointmentID != 0 || d.VideoBookingID != 0
}

// Recurring reports whether a series of appointments was requested. Only a
// new appointment can start a series.
func (d *Draft) Recurring() bool {
	return !d.Editing() && !IsVideoLink(d.AppointmentType) && d.Repeats == yes
}

// OfficerKnown reports whether probation officer details were given.
func (d *Draft) OfficerKnown() bool {
	return d.OfficerDetailsKnown == yes
}

// ApplyAppointmentForm copies the first-step form fields into the draft.
func (d *Draft) ApplyAppointmentForm(form url.Values) {
	get := func(name string) string { return strings.TrimSpace(form.Get(name)) }
	d.AppointmentType = get("appointmentType")
	d.Location = get("location")
	d.Date = get("date")
	d.StartTime = get("startTime")
	d.EndTime = get("endTime")
	d.Comment = get("comment")
	d.Repeats = get("repeats")
	d.RepeatPeriod = get("repeatPeriod")
	d.RepeatCount = get("repeatCount")
	d.ProbationTeam = get("probationTeam")
	d.MeetingType = get("meetingType")
	d.OfficerDetailsKnown = get("officerDetailsKnown")
	d.OfficerFullName = get("officerFullName")
	d.OfficerEmail = get("officerEmail")
	d.OfficerPhone = get("officerPhone")
	d.NotesForStaff = get("notesForStaff")
	d.NotesForPrisoners = get("notesForPrisoners")
}

// ApplyHearingForm copies the court hearing step fields into the draft.
func (d *Draft) ApplyHearingForm(form url.Values) {
	get := func(name string) string { return strings.TrimSpace(form.Get(name)) }
	d.Court = get("court")
	d.HearingType = get("hearingType")
	d.PreRequired = get("preRequired")
	d.PreLocation = get("preLocation")
	d.PreDuration = get("preDuration")
	d.PostRequired = get("postRequired")
	d.PostLocation = get("postLocation")
	d.PostDuration = get("postDuration")
	d.KnowVideoLink = get("knowVideoLink")
	d.CVPNumber = get("cvpNumber")
	d.VideoLinkURL = get("videoLinkUrl")
	d.GuestPinRequired = get("guestPinRequired")
	d.GuestPin = get("guestPin")
}
