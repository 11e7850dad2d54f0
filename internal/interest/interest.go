// Package interest models the financing cost of holding a hedged
// benefit-cross position until the entitlement record date.
package interest

import (
	"math"
	"time"

	"github.com/3vaseline3-ai/yuutai-site/internal/calendar"
)

// CostPerShare converts an annualized borrow rate (%) and a calendar
// day count into a per-share financing cost at the given price.
func CostPerShare(price, annualRatePct float64, days int) float64 {
	return price * (annualRatePct / 100) * (float64(days) / 365)
}

// CostPerShareMonths is the coarser variant used by the monthly-yield
// ranking: cost scales with the number of month-end crossings rather
// than calendar days.
func CostPerShareMonths(price, annualRatePct float64, months int) float64 {
	return price * (annualRatePct / 100) * (float64(months) / 12)
}

// Window describes the financing window from the next business day to
// the entitlement record date of the target month.
type Window struct {
	RecordDate  time.Time
	StartDate   time.Time
	Days        int     // calendar days, weekends and holidays included
	InterestPct float64 // annualized rate scaled to the window, 3dp
}

// MonthlyWindow computes the financing window for a target settlement
// month as seen from today. When the target month's record date has
// already passed, next year's record date is used.
func MonthlyWindow(targetMonth time.Month, today time.Time, annualRatePct float64) Window {
	base := calendar.Midnight(today)

	// 今日が休日なら翌営業日を起点とする
	start := calendar.NextBusinessDay(base)

	record := calendar.RecordDate(base.Year(), targetMonth)
	if record.Before(start) {
		record = calendar.RecordDate(base.Year()+1, targetMonth)
	}

	days := calendar.DaysBetween(start, record)

	return Window{
		RecordDate:  record,
		StartDate:   start,
		Days:        days,
		InterestPct: round3(annualRatePct * float64(days) / 365),
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
