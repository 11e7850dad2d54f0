// Package history holds per-code borrow-cost (逆日歩) and dividend
// histories parsed from the benefit information site. Records are
// ordered most-recent-first, as the source tables present them.
package history

// BorrowCostRecord is one row of the 逆日歩 history table. ClosePrice
// is the same-day close, used as a last-resort price source.
type BorrowCostRecord struct {
	Date        string  `json:"date"`
	Cost        float64 `json:"gyaku_hiboku"` // per share, yen
	MaxRate     float64 `json:"max_rate"`
	Days        int     `json:"days"`
	Dividend    float64 `json:"dividend"`
	ClosePrice  float64 `json:"close_price"`
	Restriction string  `json:"restriction"`
}

// DividendRecord is one row of the dividend table. Forecast rows are
// marked by the source with a 予 marker on the period.
type DividendRecord struct {
	Period     string  `json:"period"`
	Amount     float64 `json:"amount"`
	IsForecast bool    `json:"is_forecast"`
}

// Stock bundles the two histories for one code.
type Stock struct {
	Code        string
	BorrowCosts []BorrowCostRecord
	Dividends   []DividendRecord
}

// LatestClosePrice returns the most recent recorded close price.
// The second return is false when there is no history at all.
func (s *Stock) LatestClosePrice() (float64, bool) {
	if len(s.BorrowCosts) == 0 {
		return 0, false
	}
	return s.BorrowCosts[0].ClosePrice, true
}

// LatestDividend returns the most recent actual (non-forecast)
// dividend; when every entry is a forecast, the most recent forecast.
// The second return is false when there are no entries.
func (s *Stock) LatestDividend() (float64, bool) {
	if len(s.Dividends) == 0 {
		return 0, false
	}

	for _, d := range s.Dividends {
		if !d.IsForecast {
			return d.Amount, true
		}
	}

	// All forecasts: the list is most-recent-first
	return s.Dividends[0].Amount, true
}
