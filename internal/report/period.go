package report

import "time"

// DayStartHour is when a business day begins. Sales made before this hour
// belong to the previous calendar date.
const DayStartHour = 6

// DateLayout is the format of business-day dates on the wire.
const DateLayout = "2006-01-02"

// BusinessDay returns the midnight of the business day t falls in, in loc.
func BusinessDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	if t.Hour() < DayStartHour {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// Period returns the business period of calendar date date: from 06:00 of
// that date up to, but excluding, 06:00 of the next one.
func Period(date time.Time, loc *time.Location) (start, end time.Time) {
	d := date.In(loc)
	start = time.Date(d.Year(), d.Month(), d.Day(), DayStartHour, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// Range covers the business periods of startDate through endDate inclusive.
// The end is exclusive.
func Range(startDate, endDate time.Time, loc *time.Location) (start, end time.Time) {
	start, _ = Period(startDate, loc)
	_, end = Period(endDate, loc)
	return start, end
}

// ParseDate reads a YYYY-MM-DD calendar date in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}
