package schema

import "time"

// Layouts shared across caches, reports and history entries.
const (
	ISODateFormat   = "2006-01-02"
	MonthFormat     = "2006-01"
	TimestampFormat = "2006-01-02T15:04:05"
)

// MonthKey formats a date as its YYYY-MM bucket key.
func MonthKey(t time.Time) string {
	return t.Format(MonthFormat)
}

// MonthStart truncates a date to the first day of its month in UTC.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthGrid returns the first day of every month from epoch through
// end, inclusive on both sides. An end before epoch yields nil.
func MonthGrid(epoch, end time.Time) []time.Time {
	var months []time.Time
	for m := MonthStart(epoch); !m.After(MonthStart(end)); m = m.AddDate(0, 1, 0) {
		months = append(months, m)
	}
	return months
}

// MonthIndex returns the number of whole months from epoch's month to
// t's month. The epoch month itself is index zero.
func MonthIndex(epoch, t time.Time) int {
	return (t.Year()-epoch.Year())*12 + int(t.Month()) - int(epoch.Month())
}

// DaysBetween counts whole days from a to b at day precision.
func DaysBetween(a, b time.Time) int {
	return int(b.Truncate(24*time.Hour).Sub(a.Truncate(24*time.Hour)) / (24 * time.Hour))
}

// WeekIndex returns the zero-based week of d counted from epoch.
// Dates before epoch land in negative weeks.
func WeekIndex(epoch, d time.Time) int {
	days := DaysBetween(epoch, d)
	if days < 0 {
		return -(((-days) + 6) / 7)
	}
	return days / 7
}

// WeekStart returns the first day of week w relative to epoch.
func WeekStart(epoch time.Time, w int) time.Time {
	return epoch.AddDate(0, 0, w*7)
}

// ISODate formats a date at day precision.
func ISODate(t time.Time) string {
	return t.Format(ISODateFormat)
}

// ParseISODate parses a day-precision date into UTC.
func ParseISODate(s string) (time.Time, error) {
	return time.Parse(ISODateFormat, s)
}

// MeanDate averages dates by whole days since the Unix epoch, flooring
// the quotient the way integer ordinal division does. Zero time for an
// empty slice.
func MeanDate(dates []time.Time) time.Time {
	if len(dates) == 0 {
		return time.Time{}
	}
	var sum int64
	for _, d := range dates {
		sum += d.Unix() / 86400
	}
	mean := sum / int64(len(dates))
	return time.Unix(mean*86400, 0).UTC()
}
