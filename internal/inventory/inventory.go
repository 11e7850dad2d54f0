// Package inventory models the per-month borrow-share inventory
// snapshot (一般信用売り在庫) captured from the inventory API.
package inventory

import (
	"strings"
	"time"
)

// Broker identifies one of the fixed set of brokers reporting
// general-margin sell inventory.
type Broker string

const (
	Nikko   Broker = "nikko"
	Kabucom Broker = "kabucom"
	Rakuten Broker = "rakuten"
	SBI     Broker = "sbi"
	GMO     Broker = "gmo"
	Matsui  Broker = "matsui"
	Monex   Broker = "monex"
)

// Brokers lists all reporting brokers in display order.
var Brokers = []Broker{Nikko, Kabucom, Rakuten, SBI, GMO, Matsui, Monex}

// Restriction values for short-sell regulation status.
const (
	RestrictionNone      = ""
	RestrictionCaution   = "注意"
	RestrictionSuspended = "停止"
)

// Stock is one code's inventory entry within a monthly snapshot.
// Pointer fields are nil when the source omitted the value; a present
// zero is meaningful and is never treated as missing.
type Stock struct {
	Code        string         `json:"-"`
	Name        string         `json:"name"`
	Zaiko       map[Broker]*int `json:"zaiko"`
	Taishaku    string         `json:"taisyaku"`
	IsTaishaku  bool           `json:"is_taishaku"`
	Price       *int           `json:"kabuka"`
	Lot         *int           `json:"kabusu"`
	MaxGyaku    *int           `json:"max_gyaku"`
	GyakuDays   *int           `json:"gyaku_days"`
	Avg5Gyaku   *float64       `json:"avg5_gyaku"`
	Dividend    *int           `json:"haito"`
	GLValue     *int           `json:"gl_value"`
	Yutai       string         `json:"yutai"`
	YutaiType   string         `json:"yutai_syubetsu"`
	Restriction string         `json:"restriction"`
	RecordDay   string         `json:"d_kenri"`
	Updated     time.Time      `json:"updated"`
}

// HasInventory reports whether any broker shows positive inventory.
func (s *Stock) HasInventory() bool {
	for _, count := range s.Zaiko {
		if count != nil && *count > 0 {
			return true
		}
	}
	return false
}

// BrokerCount returns a broker's reported count, 0 when unreported.
func (s *Stock) BrokerCount(b Broker) int {
	if count, ok := s.Zaiko[b]; ok && count != nil {
		return *count
	}
	return 0
}

// ClassifyRestriction normalizes the raw regulation text from the
// source into one of the three restriction values.
func ClassifyRestriction(raw string) string {
	switch {
	case strings.Contains(raw, RestrictionSuspended):
		return RestrictionSuspended
	case strings.Contains(raw, RestrictionCaution):
		return RestrictionCaution
	default:
		return RestrictionNone
	}
}

// Snapshot is the inventory for one settlement month at one capture
// date. Stamp is the capture date in YYYYMMDD form; it orders multiple
// captures of the same month.
type Snapshot struct {
	Month  int
	Stamp  string
	Stocks map[string]*Stock
}

// Get looks up a code. The second return is false when the code is
// absent from this month's snapshot.
func (s *Snapshot) Get(code string) (*Stock, bool) {
	if s == nil {
		return nil, false
	}
	stock, ok := s.Stocks[code]
	return stock, ok
}

// Len returns the number of codes in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Stocks)
}
