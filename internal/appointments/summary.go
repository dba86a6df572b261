package appointments

import (
	"fmt"
	"strconv"
	"time"

	"github.com/wolfman30/prisoner-profile/internal/reference"
)

const (
	SectionCommon    = "common"
	SectionRecurring = "recurring"
	SectionProbation = "probation"
	SectionCourt     = "court"
	SectionComments  = "comments"

	notYetKnown = "Not yet known"
	noneEntered = "None entered"
	notRequired = "Not required"

	displayDateLayout = "Monday 2 January 2006"
)

// Row is one key/value line of the confirmation summary.
type Row struct {
	Key   string
	Value string
}

// Section groups related rows.
type Section struct {
	Name  string
	Title string
	Rows  []Row
}

// Summary is what the confirmation page lists. Sections that do not apply
// to the booking are left out.
type Summary struct {
	Sections []Section
}

// Section returns the named section if it was rendered.
func (s Summary) Section(name string) (Section, bool) {
	for _, sec := range s.Sections {
		if sec.Name == name {
			return sec, true
		}
	}
	return Section{}, false
}

// BuildSummary groups the draft's values for display.
func BuildSummary(d *Draft, data *reference.AppointmentData, loc *time.Location) Summary {
	var s Summary
	add := func(name, title string, rows []Row) {
		if len(rows) > 0 {
			s.Sections = append(s.Sections, Section{Name: name, Title: title, Rows: rows})
		}
	}

	add(SectionCommon, "Appointment details", commonRows(d, data, loc))
	if d.Recurring() {
		add(SectionRecurring, "Repeat appointments", recurringRows(d, loc))
	}
	switch d.Category() {
	case CategoryProbation:
		add(SectionProbation, "Probation meeting", probationRows(d, data))
	case CategoryCourt:
		add(SectionCourt, "Court hearing", courtRows(d, data, loc))
	}
	add(SectionComments, "Comments", commentRows(d))
	return s
}

func commonRows(d *Draft, data *reference.AppointmentData, loc *time.Location) []Row {
	rows := []Row{
		{"Type", reference.Describe(data.AppointmentTypes, d.AppointmentType)},
		{"Location", data.LocationText(d.Location)},
		{"Date", displayDate(d.Date, loc)},
		{"Start time", d.StartTime},
	}
	if d.EndTime != "" {
		rows = append(rows, Row{"End time", d.EndTime})
	}
	return rows
}

func recurringRows(d *Draft, loc *time.Location) []Row {
	rows := []Row{
		{"Frequency", PeriodText(d.RepeatPeriod)},
		{"Number of appointments", d.RepeatCount},
	}
	date, err := parseDate(d.Date, loc)
	count, cerr := strconv.Atoi(d.RepeatCount)
	if err == nil && cerr == nil {
		last := LastAppointmentDate(date, d.RepeatPeriod, count)
		rows = append(rows, Row{"Last appointment", last.Format(displayDateLayout)})
	}
	return rows
}

func probationRows(d *Draft, data *reference.AppointmentData) []Row {
	rows := []Row{
		{"Probation team", reference.Describe(data.ProbationTeams, d.ProbationTeam)},
		{"Meeting type", reference.Describe(data.MeetingTypes, d.MeetingType)},
	}
	if !d.OfficerKnown() {
		return append(rows,
			Row{"Probation officer's full name", notYetKnown},
			Row{"Email address", notYetKnown},
			Row{"UK phone number", notYetKnown},
		)
	}
	return append(rows,
		Row{"Probation officer's full name", d.OfficerFullName},
		Row{"Email address", orNoneEntered(d.OfficerEmail)},
		Row{"UK phone number", orNoneEntered(d.OfficerPhone)},
	)
}

func courtRows(d *Draft, data *reference.AppointmentData, loc *time.Location) []Row {
	rows := []Row{
		{"Court", reference.Describe(data.Courts, d.Court)},
		{"Hearing type", reference.Describe(data.HearingTypes, d.HearingType)},
		{"Pre-court hearing briefing", briefingText(d, data, loc, d.PreRequired, d.PreLocation, d.PreDuration, true)},
		{"Post-court hearing briefing", briefingText(d, data, loc, d.PostRequired, d.PostLocation, d.PostDuration, false)},
	}

	link := notYetKnown
	switch {
	case d.KnowVideoLink != yes:
	case d.VideoLinkURL != "":
		link = d.VideoLinkURL
	case d.CVPNumber != "":
		link = "HMCTS number: " + d.CVPNumber
	}
	rows = append(rows, Row{"Court hearing link", link})

	pin := notRequired
	if d.GuestPinRequired == yes {
		pin = d.GuestPin
	}
	return append(rows, Row{"Guest pin", pin})
}

func briefingText(d *Draft, data *reference.AppointmentData, loc *time.Location, required, location, duration string, before bool) string {
	if required != yes {
		return notRequired
	}
	room := data.LocationText(location)
	dur, ok := briefingDuration(duration)
	start, end, err := d.window(loc)
	if !ok || err != nil || end == nil {
		return room
	}
	if before {
		return fmt.Sprintf("%s - %s to %s", room, start.Add(-dur).Format(clockLayout), start.Format(clockLayout))
	}
	return fmt.Sprintf("%s - %s to %s", room, end.Format(clockLayout), end.Add(dur).Format(clockLayout))
}

func commentRows(d *Draft) []Row {
	if VisibilityFor(d.AppointmentType).Comments {
		if d.Comment == "" {
			return nil
		}
		return []Row{{"Comment", d.Comment}}
	}
	var rows []Row
	if d.NotesForStaff != "" {
		rows = append(rows, Row{"Notes for prison staff", d.NotesForStaff})
	}
	if d.NotesForPrisoners != "" {
		rows = append(rows, Row{"Notes for prisoner", d.NotesForPrisoners})
	}
	return rows
}

func displayDate(value string, loc *time.Location) string {
	t, err := parseDate(value, loc)
	if err != nil {
		return value
	}
	return t.Format(displayDateLayout)
}

func orNoneEntered(v string) string {
	if v == "" {
		return noneEntered
	}
	return v
}
