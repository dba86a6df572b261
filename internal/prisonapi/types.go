package prisonapi

// DateTimeLayout is the zone-less local timestamp format the API speaks.
const DateTimeLayout = "2006-01-02T15:04:05"

// ReferenceCode is one entry of a reference-data domain.
type ReferenceCode struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	ActiveFlag  string `json:"activeFlag,omitempty"`
}

// Active reports whether the code may be offered for selection.
func (c ReferenceCode) Active() bool {
	return c.ActiveFlag == "" || c.ActiveFlag == "Y"
}

// Location is an internal prison location that can host events.
type Location struct {
	ID          int64  `json:"locationId"`
	Key         string `json:"key"`
	Description string `json:"userDescription"`
}

// Prisoner is the subset of offender details the booking journey needs.
type Prisoner struct {
	PrisonerNumber string `json:"offenderNo"`
	BookingID      int64  `json:"bookingId"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	PrisonID       string `json:"agencyId"`
	CellLocation   string `json:"assignedLivingUnitDesc"`
}

// FullName is "First Last".
func (p Prisoner) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// ScheduledEvent is one calendar entry for a prisoner or a location.
type ScheduledEvent struct {
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime,omitempty"`
	Description string `json:"eventSourceDesc"`
	Location    string `json:"eventLocation"`
	Comment     string `json:"comment,omitempty"`
	PrisonerRef string `json:"offenderNo,omitempty"`
}

// Repeat asks the prison API to create a series of appointments.
type Repeat struct {
	Period string `json:"repeatPeriod"`
	Count  int    `json:"count"`
}

// AppointmentRequest creates or amends a prison (non video-link) appointment.
// Comment is always sent, even when blank.
type AppointmentRequest struct {
	AppointmentType string  `json:"appointmentType"`
	LocationID      int64   `json:"locationId"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime,omitempty"`
	Comment         string  `json:"comment"`
	Repeat          *Repeat `json:"repeat,omitempty"`
}

// Appointment is an existing prison appointment.
type Appointment struct {
	ID              int64   `json:"id"`
	BookingID       int64   `json:"bookingId"`
	AppointmentType string  `json:"appointmentTypeCode"`
	LocationID      int64   `json:"locationId"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime,omitempty"`
	Comment         string  `json:"comment,omitempty"`
	CreatedBy       string  `json:"createUserId,omitempty"`
	Repeat          *Repeat `json:"repeat,omitempty"`
}

// CreatedAppointment is returned for each appointment in a created series.
type CreatedAppointment struct {
	ID        int64  `json:"appointmentEventId"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime,omitempty"`
}

// PersonalDetails holds the editable personal characteristics of a prisoner.
type PersonalDetails struct {
	Nationality string `json:"nationality,omitempty"`
	Religion    string `json:"religion,omitempty"`
	HeightCm    *int   `json:"heightCentimetres,omitempty"`
	WeightKg    *int   `json:"weightKilograms,omitempty"`
	Diet        string `json:"diet,omitempty"`
}

// Contact is a phone number or email address held for a prisoner.
type Contact struct {
	ID    int64  `json:"id,omitempty"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

const (
	ContactTypePhone = "PHONE"
	ContactTypeEmail = "EMAIL"
)
