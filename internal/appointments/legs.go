package appointments

import (
	"fmt"
	"time"

	"github.com/wolfman30/prisoner-profile/internal/reference"
	"github.com/wolfman30/prisoner-profile/internal/videolink"
)

// Leg is one contiguous slot of a court hearing booking.
type Leg struct {
	Type        string
	LocationKey string
	Start       time.Time
	End         time.Time
}

// Appointment converts the leg into the video link API shape.
func (l Leg) Appointment() videolink.Appointment {
	return videolink.Appointment{
		Type:        l.Type,
		LocationKey: l.LocationKey,
		Date:        l.Start.Format("2006-01-02"),
		StartTime:   l.Start.Format(clockLayout),
		EndTime:     l.End.Format(clockLayout),
	}
}

// Briefing is an optional pre or post hearing slot.
type Briefing struct {
	LocationKey string
	Duration    time.Duration
}

// BuildLegs lays out up to three legs around the main hearing. The pre leg
// ends when the hearing starts and the post leg starts when it ends.
func BuildLegs(mainStart, mainEnd time.Time, mainKey string, pre, post *Briefing) []Leg {
	legs := make([]Leg, 0, 3)
	if pre != nil {
		legs = append(legs, Leg{
			Type:        videolink.AppointmentCourtPre,
			LocationKey: pre.LocationKey,
			Start:       mainStart.Add(-pre.Duration),
			End:         mainStart,
		})
	}
	legs = append(legs, Leg{
		Type:        videolink.AppointmentCourtMain,
		LocationKey: mainKey,
		Start:       mainStart,
		End:         mainEnd,
	})
	if post != nil {
		legs = append(legs, Leg{
			Type:        videolink.AppointmentCourtPost,
			LocationKey: post.LocationKey,
			Start:       mainEnd,
			End:         mainEnd.Add(post.Duration),
		})
	}
	return legs
}

// CourtLegs resolves the draft's locations and times into legs.
func CourtLegs(d *Draft, data *reference.AppointmentData, loc *time.Location) ([]Leg, error) {
	start, end, err := d.window(loc)
	if err != nil {
		return nil, err
	}
	if end == nil {
		return nil, fmt.Errorf("appointments: court hearing needs an end time")
	}
	main, ok := data.FindLocation(d.Location)
	if !ok {
		return nil, fmt.Errorf("appointments: unknown location %q", d.Location)
	}

	pre, err := resolveBriefing(data, d.PreRequired, d.PreLocation, d.PreDuration)
	if err != nil {
		return nil, fmt.Errorf("appointments: pre hearing: %w", err)
	}
	post, err := resolveBriefing(data, d.PostRequired, d.PostLocation, d.PostDuration)
	if err != nil {
		return nil, fmt.Errorf("appointments: post hearing: %w", err)
	}
	return BuildLegs(start, *end, main.Key, pre, post), nil
}

func resolveBriefing(data *reference.AppointmentData, required, location, duration string) (*Briefing, error) {
	if required != yes {
		return nil, nil
	}
	l, ok := data.FindLocation(location)
	if !ok {
		return nil, fmt.Errorf("unknown location %q", location)
	}
	dur, ok := briefingDuration(duration)
	if !ok {
		return nil, fmt.Errorf("invalid duration %q", duration)
	}
	return &Briefing{LocationKey: l.Key, Duration: dur}, nil
}

// window parses the draft's date and times. end is nil when no end time was
// entered.
func (d *Draft) window(loc *time.Location) (time.Time, *time.Time, error) {
	date, err := parseDate(d.Date, loc)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("appointments: date %q: %w", d.Date, err)
	}
	startOffset, err := parseClock(d.StartTime)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("appointments: start time %q: %w", d.StartTime, err)
	}
	start := at(date, startOffset)
	if d.EndTime == "" {
		return start, nil, nil
	}
	endOffset, err := parseClock(d.EndTime)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("appointments: end time %q: %w", d.EndTime, err)
	}
	end := at(date, endOffset)
	return start, &end, nil
}
