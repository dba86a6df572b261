package appointments

import (
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wolfman30/prisoner-profile/internal/flash"
)

const (
	dateLayout  = "2/1/2006"
	clockLayout = "15:04"

	maxCommentLength = 3600
	maxNotesLength   = 400

	// maxRepeatCount is a daily series of a year that spans a leap day.
	maxRepeatCount = 367
)

// BriefingDurations are the pre and post hearing lengths offered, in minutes.
var BriefingDurations = []int{15, 30, 45, 60}

// Validator checks submitted drafts against the current time.
type Validator struct {
	loc *time.Location
	now func() time.Time
}

// NewValidator creates a validator that judges dates in loc as of now().
func NewValidator(loc *time.Location, now func() time.Time) *Validator {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Validator{loc: loc, now: now}
}

type fieldErrors []flash.FieldError

func (e *fieldErrors) add(field, message string) {
	*e = append(*e, flash.FieldError{Field: field, Message: message})
}

// Appointment validates the first step of the journey for the draft's type.
func (v *Validator) Appointment(d *Draft) []flash.FieldError {
	var errs fieldErrors
	vis := VisibilityFor(d.AppointmentType)

	if d.AppointmentType == "" {
		errs.add("appointmentType", "Select the type of appointment")
	}
	if d.Location == "" {
		errs.add("location", "Select the place for this appointment")
	}

	now := v.now().In(v.loc)
	today := truncateDay(now)

	date, dateOK := time.Time{}, false
	switch {
	case d.Date == "":
		errs.add("date", "Enter a date")
	default:
		parsed, err := parseDate(d.Date, v.loc)
		switch {
		case err != nil:
			errs.add("date", "Enter a valid date")
		case parsed.Before(today):
			errs.add("date", "Enter a date that is not in the past")
		default:
			date, dateOK = parsed, true
		}
	}

	start, startOK := time.Duration(0), false
	switch {
	case d.StartTime == "":
		errs.add("startTime", "Enter a start time")
	default:
		parsed, err := parseClock(d.StartTime)
		switch {
		case err != nil:
			errs.add("startTime", "Enter a valid start time")
		case dateOK && date.Equal(today) && at(date, parsed).Before(now):
			errs.add("startTime", "Enter a start time that is not in the past")
		default:
			start, startOK = parsed, true
		}
	}

	switch {
	case d.EndTime == "":
		if vis.EndTimeRequired {
			errs.add("endTime", "Enter an end time")
		}
	default:
		end, err := parseClock(d.EndTime)
		switch {
		case err != nil:
			errs.add("endTime", "Enter a valid end time")
		case startOK && end <= start:
			errs.add("endTime", "Enter an end time that is after the start time")
		}
	}

	if vis.Comments && utf8.RuneCountInString(d.Comment) > maxCommentLength {
		errs.add("comment", "Enter a comment using 3,600 characters or less")
	}
	if vis.Notes {
		if utf8.RuneCountInString(d.NotesForStaff) > maxNotesLength {
			errs.add("notesForStaff", "Enter notes using 400 characters or less")
		}
		if utf8.RuneCountInString(d.NotesForPrisoners) > maxNotesLength {
			errs.add("notesForPrisoners", "Enter notes using 400 characters or less")
		}
	}

	if vis.Recurring && d.AppointmentType != "" && !d.Editing() {
		v.recurring(d, date, dateOK, &errs)
	}
	if vis.ProbationFields {
		probation(d, &errs)
	}
	return errs
}

func (v *Validator) recurring(d *Draft, date time.Time, dateOK bool, errs *fieldErrors) {
	switch d.Repeats {
	case yes:
	case no:
		return
	default:
		errs.add("repeats", "Select if this is a recurring appointment")
		return
	}

	periodOK := validPeriod(d.RepeatPeriod)
	if !periodOK {
		errs.add("repeatPeriod", "Select how often the appointment repeats")
	}

	count, err := strconv.Atoi(d.RepeatCount)
	switch {
	case err != nil || count < 1:
		errs.add("repeatCount", "Enter how many appointments")
	case count > maxRepeatCount || periodOK && dateOK && !WithinAYear(date, d.RepeatPeriod, count):
		errs.add("repeatCount", "Enter a number of appointments that ends within a year")
	}
}

func probation(d *Draft, errs *fieldErrors) {
	if d.ProbationTeam == "" {
		errs.add("probationTeam", "Select the probation team")
	}
	if d.MeetingType == "" {
		errs.add("meetingType", "Select the meeting type")
	}
	switch d.OfficerDetailsKnown {
	case yes:
		if d.OfficerFullName == "" {
			errs.add("officerFullName", "Enter the officer's full name")
		}
		if d.OfficerEmail == "" && d.OfficerPhone == "" {
			errs.add("officerEmail", "Enter an email address or phone number")
		} else if d.OfficerEmail != "" && !validEmail(d.OfficerEmail) {
			errs.add("officerEmail", "Enter a valid email address")
		}
	case no:
	default:
		errs.add("officerDetailsKnown", "Select if you know the officer's details")
	}
}

// Hearing validates the court hearing step.
func (v *Validator) Hearing(d *Draft) []flash.FieldError {
	var errs fieldErrors

	if d.Court == "" {
		errs.add("court", "Select the court")
	}
	if d.HearingType == "" {
		errs.add("hearingType", "Select the hearing type")
	}
	briefing(&errs, "pre", "pre-court hearing briefing", d.PreRequired, d.PreLocation, d.PreDuration)
	briefing(&errs, "post", "post-court hearing briefing", d.PostRequired, d.PostLocation, d.PostDuration)

	switch d.KnowVideoLink {
	case yes:
		if (d.CVPNumber == "") == (d.VideoLinkURL == "") {
			errs.add("videoLink", "Enter either a CVP number or a video link, not both")
		}
	case no:
	default:
		errs.add("knowVideoLink", "Select if you know the video link")
	}

	switch d.GuestPinRequired {
	case yes:
		if d.GuestPin == "" || !allDigits(d.GuestPin) {
			errs.add("guestPin", "Enter the guest pin using numbers only")
		}
	case no:
	default:
		errs.add("guestPinRequired", "Select if a guest pin is required")
	}

	if utf8.RuneCountInString(d.NotesForStaff) > maxNotesLength {
		errs.add("notesForStaff", "Enter notes using 400 characters or less")
	}
	if utf8.RuneCountInString(d.NotesForPrisoners) > maxNotesLength {
		errs.add("notesForPrisoners", "Enter notes using 400 characters or less")
	}
	return errs
}

func briefing(errs *fieldErrors, prefix, name, required, location, duration string) {
	switch required {
	case yes:
		if location == "" {
			errs.add(prefix+"Location", "Select a room for the "+name)
		}
		if _, ok := briefingDuration(duration); !ok {
			errs.add(prefix+"Duration", "Select a duration for the "+name)
		}
	case no:
	default:
		errs.add(prefix+"Required", "Select if a "+name+" is needed")
	}
}

func briefingDuration(value string) (time.Duration, bool) {
	minutes, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	for _, allowed := range BriefingDurations {
		if minutes == allowed {
			return time.Duration(minutes) * time.Minute, true
		}
	}
	return 0, false
}

func parseDate(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout, strings.TrimSpace(value), loc)
}

// parseClock returns the offset of "HH:MM" from midnight.
func parseClock(value string) (time.Duration, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(value))
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// at is the wall-clock time offset from midnight on date.
func at(date time.Time, offset time.Duration) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location()).Add(offset)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func validEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	return err == nil && addr.Address == value && strings.Contains(value[strings.Index(value, "@"):], ".")
}

func allDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return value != ""
}
