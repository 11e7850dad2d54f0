package interest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/3vaseline3-ai/yuutai-site/internal/calendar"
)

func TestCostPerShare(t *testing.T) {
	// 2000円 × 1.7% × 73/365 = 6.8円
	assert.InDelta(t, 6.8, CostPerShare(2000, 1.7, 73), 1e-9)
	assert.Equal(t, 0.0, CostPerShare(0, 1.7, 30))
	assert.Equal(t, 0.0, CostPerShare(2000, 1.7, 0))
}

func TestCostPerShareMonths(t *testing.T) {
	// 1200円 × 1.7% × 6/12 = 10.2円
	assert.InDelta(t, 10.2, CostPerShareMonths(1200, 1.7, 6), 1e-9)
}

func TestMonthlyWindow(t *testing.T) {
	// From Monday 2024-06-10 to the June 2024 record date (2024-06-26)
	today := calendar.Date(2024, 6, 10)
	w := MonthlyWindow(time.June, today, 1.7)

	assert.Equal(t, calendar.Date(2024, 6, 10), w.StartDate)
	assert.Equal(t, calendar.Date(2024, 6, 26), w.RecordDate)
	assert.Equal(t, 16, w.Days)
	assert.InDelta(t, 0.075, w.InterestPct, 1e-9) // 1.7 * 16/365 rounded to 3dp
}

func TestMonthlyWindowStartsOnNextBusinessDay(t *testing.T) {
	// Saturday start rolls to Monday
	today := calendar.Date(2024, 6, 15)
	w := MonthlyWindow(time.June, today, 1.7)

	assert.Equal(t, calendar.Date(2024, 6, 17), w.StartDate)
}

func TestMonthlyWindowWrapsToNextYear(t *testing.T) {
	// Target month already passed: March seen from June uses next March
	today := calendar.Date(2024, 6, 10)
	w := MonthlyWindow(time.March, today, 1.7)

	assert.Equal(t, 2025, w.RecordDate.Year())
	assert.Equal(t, time.March, w.RecordDate.Month())
	assert.Greater(t, w.Days, 200)
}
