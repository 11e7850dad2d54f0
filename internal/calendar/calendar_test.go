package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsBusinessDay(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want bool
	}{
		{"weekday", Date(2024, 6, 12), true},  // Wednesday
		{"saturday", Date(2024, 6, 15), false},
		{"sunday", Date(2024, 6, 16), false},
		{"new years day", Date(2024, 1, 1), false},
		{"culture day observed", Date(2025, 11, 3), false}, // 文化の日
		{"ordinary monday", Date(2024, 6, 10), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBusinessDay(tt.date))
		})
	}
}

func TestNextBusinessDay(t *testing.T) {
	// Friday stays put
	assert.Equal(t, Date(2024, 6, 14), NextBusinessDay(Date(2024, 6, 14)))

	// Saturday rolls to Monday
	assert.Equal(t, Date(2024, 6, 17), NextBusinessDay(Date(2024, 6, 15)))

	// New Year holidays: Jan 1 2024 (Monday, holiday) rolls to Jan 2
	assert.Equal(t, Date(2024, 1, 2), NextBusinessDay(Date(2024, 1, 1)))
}

func TestLastBusinessDayOfMonth(t *testing.T) {
	// June 2024 ends on Sunday the 30th; last trading day is Friday the 28th
	assert.Equal(t, Date(2024, 6, 28), LastBusinessDayOfMonth(2024, time.June))

	// December 2024 ends on Tuesday the 31st, a trading day
	assert.Equal(t, Date(2024, 12, 31), LastBusinessDayOfMonth(2024, time.December))

	// November 2024 ends on Saturday the 30th; last trading day is Friday the 29th
	assert.Equal(t, Date(2024, 11, 29), LastBusinessDayOfMonth(2024, time.November))
}

func TestRecordDate(t *testing.T) {
	// June 2024: last trading day Fri 28th, two business days back is Wed 26th
	assert.Equal(t, Date(2024, 6, 26), RecordDate(2024, time.June))

	// December 2024 wraps year-end arithmetic: last trading day Tue 31st,
	// back over the weekend lands on Fri 27th
	got := RecordDate(2024, time.December)
	assert.Equal(t, Date(2024, 12, 27), got)
	assert.True(t, IsBusinessDay(got))

	// The record date is always a business day strictly before month end
	assert.True(t, got.Before(LastBusinessDayOfMonth(2024, time.December)))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(Date(2024, 6, 10), Date(2024, 6, 10)))
	assert.Equal(t, 7, DaysBetween(Date(2024, 6, 10), Date(2024, 6, 17)))
	// Counts weekends and holidays as calendar days
	assert.Equal(t, 31, DaysBetween(Date(2023, 12, 15), Date(2024, 1, 15)))
}
