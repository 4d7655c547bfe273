package domain

import "time"

// DayAfterTomorrowOffset is the day offset the humidity checks default to.
const DayAfterTomorrowOffset = 2

// Today returns the current time from the package clock.
func Today() time.Time {
	return clock.Now()
}

// DayOffset returns the current time shifted by days calendar days.
// Negative offsets look back.
func DayOffset(days int) time.Time {
	return clock.Now().AddDate(0, 0, days)
}

// DayAfterTomorrow is DayOffset(2).
func DayAfterTomorrow() time.Time {
	return DayOffset(DayAfterTomorrowOffset)
}

// IsWeekday reports whether t falls on Monday through Friday.
func IsWeekday(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// DaysBetween returns the absolute number of calendar days between a and b,
// ignoring the time of day. Both are compared in a's location.
func DaysBetween(a, b time.Time) int {
	loc := a.Location()
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bl := b.In(loc)
	db := time.Date(bl.Year(), bl.Month(), bl.Day(), 0, 0, 0, 0, time.UTC)

	days := int(db.Sub(da).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}
