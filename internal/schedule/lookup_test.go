package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/prisoner-profile/internal/prisonapi"
	"github.com/wolfman30/prisoner-profile/pkg/logging"
)

type fakeSource struct {
	prisoner []prisonapi.ScheduledEvent
	location []prisonapi.ScheduledEvent
	err      error
}

func (f fakeSource) GetPrisonerEvents(context.Context, int64, time.Time) ([]prisonapi.ScheduledEvent, error) {
	return f.prisoner, f.err
}

func (f fakeSource) GetLocationEvents(context.Context, string, int64, time.Time) ([]prisonapi.ScheduledEvent, error) {
	return f.location, f.err
}

func TestForPrisoner_SortsAndParses(t *testing.T) {
	src := fakeSource{prisoner: []prisonapi.ScheduledEvent{
		{StartTime: "2026-10-17T14:00:00", Description: "Education", Location: "Classroom 1"},
		{StartTime: "2026-10-17T09:00:00", EndTime: "2026-10-17T10:30:00", Description: "Gym", Location: "Gym", Comment: "Bring kit"},
		{StartTime: "garbage", Description: "Broken"},
	}}
	l := NewLookup(src, time.UTC, logging.Discard())

	events, err := l.ForPrisoner(context.Background(), 1, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Gym", events[0].Description)
	assert.Equal(t, "09:00 to 10:30", events[0].TimeRange())
	assert.Equal(t, "14:00", events[1].TimeRange())
	assert.Equal(t, "Bring kit", events[0].Comment)
}

func TestForLocation_WrapsErrors(t *testing.T) {
	l := NewLookup(fakeSource{err: errors.New("down")}, nil, logging.Discard())

	_, err := l.ForLocation(context.Background(), "MDI", 2, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "location events")
}

func TestEventOverlaps(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2026, 10, 17, h, m, 0, 0, time.UTC) }
	end := at(10, 0)
	ev := Event{Start: at(9, 0), End: &end}

	assert.True(t, ev.Overlaps(at(9, 30), at(11, 0)))
	assert.False(t, ev.Overlaps(at(10, 0), at(11, 0)), "touching windows do not clash")
	assert.False(t, ev.Overlaps(at(8, 0), at(9, 0)))

	open := Event{Start: at(9, 15)}
	assert.True(t, open.Overlaps(at(9, 0), at(9, 30)))
}

func TestTableEmpty(t *testing.T) {
	assert.True(t, Table{}.Empty())
	assert.False(t, Table{Events: []Event{{}}}.Empty())
}
