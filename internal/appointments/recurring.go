package appointments

import "time"

// Repeat periods understood by the prison API.
const (
	PeriodDaily       = "DAILY"
	PeriodWeekdays    = "WEEKDAYS"
	PeriodWeekly      = "WEEKLY"
	PeriodFortnightly = "FORTNIGHTLY"
	PeriodMonthly     = "MONTHLY"
)

// RepeatPeriod is one selectable repeat frequency.
type RepeatPeriod struct {
	Value string
	Text  string
}

// RepeatPeriods lists the frequencies in display order.
var RepeatPeriods = []RepeatPeriod{
	{PeriodWeekdays, "Every weekday (Monday to Friday)"},
	{PeriodDaily, "Daily (includes weekends)"},
	{PeriodWeekly, "Weekly"},
	{PeriodFortnightly, "Fortnightly"},
	{PeriodMonthly, "Monthly"},
}

// PeriodText is the display text of a repeat period.
func PeriodText(period string) string {
	for _, p := range RepeatPeriods {
		if p.Value == period {
			return p.Text
		}
	}
	return period
}

func validPeriod(period string) bool {
	for _, p := range RepeatPeriods {
		if p.Value == period {
			return true
		}
	}
	return false
}

// LastAppointmentDate is start advanced by count-1 periods. Weekday series
// skip Saturdays and Sundays; monthly series clamp to the end of shorter
// months. A count below one is treated as one.
func LastAppointmentDate(start time.Time, period string, count int) time.Time {
	steps := count - 1
	if steps <= 0 {
		return start
	}
	switch period {
	case PeriodDaily:
		return start.AddDate(0, 0, steps)
	case PeriodWeekly:
		return start.AddDate(0, 0, 7*steps)
	case PeriodFortnightly:
		return start.AddDate(0, 0, 14*steps)
	case PeriodMonthly:
		return addMonthsClamped(start, steps)
	case PeriodWeekdays:
		return addWeekdays(start, steps)
	}
	return start
}

// addWeekdays moves n weekdays on from t. A weekend start counts from the
// Friday before it, so five weekdays is always one whole week.
func addWeekdays(t time.Time, n int) time.Time {
	switch t.Weekday() {
	case time.Saturday:
		t = t.AddDate(0, 0, -1)
	case time.Sunday:
		t = t.AddDate(0, 0, -2)
	}
	t = t.AddDate(0, 0, 7*(n/5))
	for rem := n % 5; rem > 0; {
		t = t.AddDate(0, 0, 1)
		if wd := t.Weekday(); wd != time.Saturday && wd != time.Sunday {
			rem--
		}
	}
	return t
}

// WithinAYear reports whether the series ends no later than one year after
// it starts.
func WithinAYear(start time.Time, period string, count int) bool {
	return !LastAppointmentDate(start, period, count).After(start.AddDate(1, 0, 0))
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
