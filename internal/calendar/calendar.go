// Package calendar provides business-day arithmetic for the Tokyo
// market: weekends and Japanese public holidays are non-business days.
package calendar

import (
	"time"

	holiday_jp "github.com/holiday-jp/holiday_jp-go"
)

// jst is the timezone all market dates are anchored to.
var jst = time.FixedZone("JST", 9*60*60)

// Now returns the current time in JST.
func Now() time.Time {
	return time.Now().In(jst)
}

// Date constructs a midnight JST date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, jst)
}

// Midnight truncates a time to its midnight JST date.
func Midnight(t time.Time) time.Time {
	y, m, d := t.In(jst).Date()
	return Date(y, m, d)
}

// IsBusinessDay reports whether d is a trading day (not a weekend, not
// a Japanese public holiday).
func IsBusinessDay(d time.Time) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !holiday_jp.IsHoliday(d)
}

// NextBusinessDay returns d itself if it is a business day, otherwise
// the first business day after it.
func NextBusinessDay(d time.Time) time.Time {
	for !IsBusinessDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// LastBusinessDayOfMonth returns the last trading day of the month.
func LastBusinessDayOfMonth(year int, month time.Month) time.Time {
	// First day of the next month minus one calendar day. time.Date
	// normalizes month+1, so December rolls over into January.
	last := Date(year, month+1, 1).AddDate(0, 0, -1)
	for !IsBusinessDay(last) {
		last = last.AddDate(0, 0, -1)
	}
	return last
}

// RecordDate returns the 権利付日 (entitlement record date): the day
// two business days before the month's last trading day. Shares must
// be held at this close to receive the benefit.
func RecordDate(year int, month time.Month) time.Time {
	d := LastBusinessDayOfMonth(year, month)

	businessDaysBack := 0
	for businessDaysBack < 2 {
		d = d.AddDate(0, 0, -1)
		if IsBusinessDay(d) {
			businessDaysBack++
		}
	}

	return d
}

// DaysBetween returns the calendar-day difference to - from, counting
// weekends and holidays. Financing accrues on calendar days.
func DaysBetween(from, to time.Time) int {
	return int(Midnight(to).Sub(Midnight(from)).Hours() / 24)
}
