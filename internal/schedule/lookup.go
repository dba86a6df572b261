// Package schedule reads a prisoner's or a location's events for one day so
// the booking forms can show what is already happening.
package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wolfman30/prisoner-profile/internal/prisonapi"
	"github.com/wolfman30/prisoner-profile/pkg/logging"
)

// Source is the part of the prison API the lookup reads.
type Source interface {
	GetPrisonerEvents(ctx context.Context, bookingID int64, date time.Time) ([]prisonapi.ScheduledEvent, error)
	GetLocationEvents(ctx context.Context, prisonID string, locationID int64, date time.Time) ([]prisonapi.ScheduledEvent, error)
}

// Event is a read-only calendar entry.
type Event struct {
	Start       time.Time
	End         *time.Time
	Description string
	Location    string
	Comment     string
}

// TimeRange renders "09:00 to 10:00", or just the start when open-ended.
func (e Event) TimeRange() string {
	if e.End == nil {
		return e.Start.Format("15:04")
	}
	return e.Start.Format("15:04") + " to " + e.End.Format("15:04")
}

// Overlaps reports whether the event clashes with [start, end). Open-ended
// events are treated as instantaneous.
func (e Event) Overlaps(start, end time.Time) bool {
	evEnd := e.Start
	if e.End != nil {
		evEnd = *e.End
	}
	if !end.After(start) {
		end = start.Add(time.Minute)
	}
	if !evEnd.After(e.Start) {
		evEnd = e.Start.Add(time.Minute)
	}
	return e.Start.Before(end) && start.Before(evEnd)
}

// Table is one rendered "what else is on" block.
type Table struct {
	Title  string
	Date   time.Time
	Events []Event
}

// Empty reports whether nothing is scheduled.
func (t Table) Empty() bool {
	return len(t.Events) == 0
}

// Lookup converts upstream events into local-time Events.
type Lookup struct {
	source Source
	loc    *time.Location
	logger *logging.Logger
}

func NewLookup(source Source, loc *time.Location, logger *logging.Logger) *Lookup {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Lookup{source: source, loc: loc, logger: logger}
}

// ForPrisoner returns the prisoner's events on date, ordered by start.
func (l *Lookup) ForPrisoner(ctx context.Context, bookingID int64, date time.Time) ([]Event, error) {
	raw, err := l.source.GetPrisonerEvents(ctx, bookingID, date)
	if err != nil {
		return nil, fmt.Errorf("schedule: prisoner events: %w", err)
	}
	return l.convert(raw), nil
}

// ForLocation returns everything booked into a location on date.
func (l *Lookup) ForLocation(ctx context.Context, prisonID string, locationID int64, date time.Time) ([]Event, error) {
	raw, err := l.source.GetLocationEvents(ctx, prisonID, locationID, date)
	if err != nil {
		return nil, fmt.Errorf("schedule: location events: %w", err)
	}
	return l.convert(raw), nil
}

func (l *Lookup) convert(raw []prisonapi.ScheduledEvent) []Event {
	events := make([]Event, 0, len(raw))
	for _, r := range raw {
		start, err := time.ParseInLocation(prisonapi.DateTimeLayout, r.StartTime, l.loc)
		if err != nil {
			l.logger.Warn("skipping event with unparseable start", "start", r.StartTime, "error", err)
			continue
		}
		ev := Event{
			Start:       start,
			Description: r.Description,
			Location:    r.Location,
			Comment:     r.Comment,
		}
		if r.EndTime != "" {
			if end, err := time.ParseInLocation(prisonapi.DateTimeLayout, r.EndTime, l.loc); err == nil {
				ev.End = &end
			}
		}
		events = append(events, ev)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })
	return events
}
