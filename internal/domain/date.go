package domain

import "time"

// DayLayout is the wire and storage format of a calendar day.
const DayLayout = "2006-01-02"

// Day returns the calendar day of t as observed in loc, as a UTC midnight.
func Day(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a calendar day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Normalize drops the clock and zone of a day read back from storage.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

func NextDay(t time.Time) time.Time {
	return Normalize(t).AddDate(0, 0, 1)
}

func PrevDay(t time.Time) time.Time {
	return Normalize(t).AddDate(0, 0, -1)
}

func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}

// DaysBetween counts whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Normalize(b).Sub(Normalize(a)).Hours() / 24)
}
