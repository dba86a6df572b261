package appointments

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/prisoner-profile/internal/prisonapi"
	"github.com/wolfman30/prisoner-profile/internal/reference"
	"github.com/wolfman30/prisoner-profile/internal/statestore"
	"github.com/wolfman30/prisoner-profile/internal/videolink"
)

// DraftStore keeps journeys in the state store, scoped to the staff user.
type DraftStore struct {
	store statestore.Store
	ttl   time.Duration
}

// NewDraftStore creates a draft store whose entries expire after ttl.
func NewDraftStore(store statestore.Store, ttl time.Duration) *DraftStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &DraftStore{store: store, ttl: ttl}
}

// Create stores a new draft and returns its id.
func (s *DraftStore) Create(ctx context.Context, owner string, d *Draft) (string, error) {
	id := uuid.NewString()
	if err := s.Save(ctx, owner, id, d); err != nil {
		return "", err
	}
	return id, nil
}

// Save replaces the draft under id.
func (s *DraftStore) Save(ctx context.Context, owner, id string, d *Draft) error {
	if err := s.store.Save(ctx, draftKey(owner, id), d, s.ttl); err != nil {
		return fmt.Errorf("appointments: save draft: %w", err)
	}
	return nil
}

// Load returns the draft, or ok=false when it is unknown, expired or was
// started by someone else.
func (s *DraftStore) Load(ctx context.Context, owner, id string) (*Draft, bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false, nil
	}
	var d Draft
	ok, err := s.store.Load(ctx, draftKey(owner, id), &d)
	if err != nil {
		return nil, false, fmt.Errorf("appointments: load draft: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	return &d, true, nil
}

func draftKey(owner, id string) string {
	return "draft:" + owner + ":" + id
}

// DraftFromAppointment pre-fills an edit journey from a prison appointment.
func DraftFromAppointment(a *prisonapi.Appointment, prisoner prisonapi.Prisoner, loc *time.Location) (*Draft, error) {
	start, err := time.ParseInLocation(prisonapi.DateTimeLayout, a.StartTime, loc)
	if err != nil {
		return nil, fmt.Errorf("appointments: appointment start %q: %w", a.StartTime, err)
	}
	d := &Draft{
		AppointmentType: a.AppointmentType,
		Location:        strconv.FormatInt(a.LocationID, 10),
		Date:            start.Format("02/01/2006"),
		StartTime:       start.Format(clockLayout),
		Comment:         a.Comment,
		Repeats:         no,
		AppointmentID:   a.ID,
		Prisoner:        prisoner,
	}
	if a.EndTime != "" {
		if end, err := time.ParseInLocation(prisonapi.DateTimeLayout, a.EndTime, loc); err == nil {
			d.EndTime = end.Format(clockLayout)
		}
	}
	return d, nil
}

// DraftFromBooking pre-fills an edit journey from a video link booking.
func DraftFromBooking(b *videolink.Booking, prisoner prisonapi.Prisoner, data *reference.AppointmentData) (*Draft, error) {
	d := &Draft{
		NotesForStaff:     b.NotesForStaff,
		NotesForPrisoners: b.NotesForPrisoners,
		VideoBookingID:    b.ID,
		Prisoner:          prisoner,
	}

	legs := b.AppointmentsFor(prisoner.PrisonerNumber)
	byType := make(map[string]videolink.Appointment, len(legs))
	for _, l := range legs {
		byType[l.Type] = l
	}

	var main videolink.Appointment
	var ok bool
	switch b.BookingType {
	case videolink.BookingTypeProbation:
		d.AppointmentType = TypeProbationMeeting
		d.ProbationTeam = b.ProbationTeamCode
		d.MeetingType = b.ProbationMeetingType
		d.OfficerDetailsKnown = no
		if c := b.AdditionalBookingDetails; c != nil {
			d.OfficerDetailsKnown = yes
			d.OfficerFullName = c.ContactName
			d.OfficerEmail = c.ContactEmail
			d.OfficerPhone = c.ContactNumber
		}
		main, ok = byType[videolink.AppointmentProbation]
	case videolink.BookingTypeCourt:
		d.AppointmentType = TypeCourtHearing
		d.Court = b.CourtCode
		d.HearingType = b.CourtHearingType
		d.KnowVideoLink = no
		if b.VideoLinkURL != "" || b.HmctsNumber != "" {
			d.KnowVideoLink = yes
			d.VideoLinkURL = b.VideoLinkURL
			d.CVPNumber = b.HmctsNumber
		}
		d.GuestPinRequired = no
		if b.GuestPin != "" {
			d.GuestPinRequired = yes
			d.GuestPin = b.GuestPin
		}
		main, ok = byType[videolink.AppointmentCourtMain]
		d.PreRequired, d.PreLocation, d.PreDuration = briefingFromLeg(byType, videolink.AppointmentCourtPre, data)
		d.PostRequired, d.PostLocation, d.PostDuration = briefingFromLeg(byType, videolink.AppointmentCourtPost, data)
	default:
		return nil, fmt.Errorf("appointments: unknown booking type %q", b.BookingType)
	}
	if !ok {
		return nil, fmt.Errorf("appointments: booking %d has no appointment for %s", b.ID, prisoner.PrisonerNumber)
	}

	date, err := time.Parse("2006-01-02", main.Date)
	if err != nil {
		return nil, fmt.Errorf("appointments: booking date %q: %w", main.Date, err)
	}
	d.Date = date.Format("02/01/2006")
	d.StartTime = main.StartTime
	d.EndTime = main.EndTime
	d.Location = locationValue(data, main.LocationKey)
	return d, nil
}

func briefingFromLeg(byType map[string]videolink.Appointment, legType string, data *reference.AppointmentData) (required, location, duration string) {
	leg, ok := byType[legType]
	if !ok {
		return no, "", ""
	}
	start, err1 := parseClock(leg.StartTime)
	end, err2 := parseClock(leg.EndTime)
	if err1 == nil && err2 == nil && end > start {
		duration = strconv.Itoa(int((end - start) / time.Minute))
	}
	return yes, locationValue(data, leg.LocationKey), duration
}

func locationValue(data *reference.AppointmentData, key string) string {
	for _, l := range data.Locations {
		if l.Key == key {
			return l.Value()
		}
	}
	return ""
}
