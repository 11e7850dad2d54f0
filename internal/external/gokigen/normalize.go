package gokigen

import (
	"strings"
	"time"

	"github.com/3vaseline3-ai/yuutai-site/internal/inventory"
)

// brokerFields maps each broker to its *vol column in the API.
var brokerFields = map[inventory.Broker]string{
	inventory.Nikko:   "nvol",
	inventory.Kabucom: "kvol",
	inventory.Rakuten: "rvol",
	inventory.SBI:     "svol",
	inventory.GMO:     "gvol",
	inventory.Matsui:  "mvol",
	inventory.Monex:   "xvol",
}

// Normalize converts raw API records into a typed monthly snapshot.
// stamp is the capture date (YYYYMMDD); now stamps each stock's
// Updated field.
func Normalize(items []RawItem, month int, stamp string, now time.Time) *inventory.Snapshot {
	stocks := make(map[string]*inventory.Stock, len(items))

	for _, item := range items {
		code := item.Str("code")
		if code == "" || code == "0000" {
			continue
		}

		zaiko := make(map[inventory.Broker]*int, len(brokerFields))
		for broker, field := range brokerFields {
			zaiko[broker] = item.Int(field)
		}

		taishaku := item.Str("taisyaku")

		stocks[code] = &inventory.Stock{
			Code:        code,
			Name:        item.Str("name"),
			Zaiko:       zaiko,
			Taishaku:    taishaku,
			IsTaishaku:  strings.Contains(taishaku, "貸借"),
			Price:       item.Int("kabuka"),
			Lot:         item.Int("kabusu"),
			MaxGyaku:    item.Int("riron_gyaku"),
			GyakuDays:   item.Int("gyaku_days"),
			Avg5Gyaku:   item.Float("avg5_gyaku"),
			Dividend:    item.Int("haito"),
			GLValue:     item.Int("gl_value"),
			Yutai:       item.Str("yutai"),
			YutaiType:   item.Str("yutai_syubetsu"),
			Restriction: inventory.ClassifyRestriction(item.Str("recent_gyaku_kisei")),
			RecordDay:   item.Str("d_kenri"),
			Updated:     now,
		}
	}

	return &inventory.Snapshot{
		Month:  month,
		Stamp:  stamp,
		Stocks: stocks,
	}
}
