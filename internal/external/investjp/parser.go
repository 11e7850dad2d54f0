package investjp

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/3vaseline3-ai/yuutai-site/internal/history"
)

var (
	nameRe   = regexp.MustCompile(`(.+?)\(`)
	numberRe = regexp.MustCompile(`([\d,]+)`)
	monthRe  = regexp.MustCompile(`(\d+)月`)
	amountRe = regexp.MustCompile(`([\d.]+)`)
)

// BenefitTier is one share-count tier of the entitlement table.
type BenefitTier struct {
	Shares      int    `json:"shares"`
	Value       int    `json:"value"`
	Description string `json:"description"`
}

// Benefit is the entitlement description block of a detail page.
type Benefit struct {
	Title   string        `json:"title"`
	Content string        `json:"content"`
	Tiers   []BenefitTier `json:"tiers"`
}

// MinTier returns the lowest-share tier, the default cross size.
func (b *Benefit) MinTier() (BenefitTier, bool) {
	if len(b.Tiers) == 0 {
		return BenefitTier{}, false
	}

	min := b.Tiers[0]
	for _, t := range b.Tiers[1:] {
		if t.Shares < min.Shares {
			min = t
		}
	}
	return min, true
}

// ParsedStock is everything extracted from one detail page.
type ParsedStock struct {
	Code            string                     `json:"code"`
	Name            string                     `json:"name"`
	Lot             int                        `json:"lot"`
	SettlementMonth int                        `json:"settlement_month"`
	IsTaishaku      bool                       `json:"is_taishaku"`
	Restriction     string                     `json:"current_restriction"`
	BorrowCosts     []history.BorrowCostRecord `json:"gyaku_hiboku"`
	Dividends       []history.DividendRecord   `json:"dividend"`
	Benefit         Benefit                    `json:"yuutai"`
}

// History converts the parsed page into the history model.
func (p *ParsedStock) History() *history.Stock {
	return &history.Stock{
		Code:        p.Code,
		BorrowCosts: p.BorrowCosts,
		Dividends:   p.Dividends,
	}
}

// Parse extracts the stock data from a detail page. A page without a
// span#code element is not a detail page and yields an error.
func Parse(r io.Reader) (*ParsedStock, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	code := strings.TrimSpace(doc.Find("span#code").First().Text())
	if code == "" {
		return nil, fmt.Errorf("no stock code element found")
	}

	stock := &ParsedStock{Code: code}

	if m := nameRe.FindStringSubmatch(doc.Find("h1").First().Text()); m != nil {
		stock.Name = strings.TrimSpace(m[1])
	}

	if m := numberRe.FindStringSubmatch(doc.Find("td#lot").First().Text()); m != nil {
		stock.Lot = parseInt(m[1])
	}

	doc.Find("th").EachWithBreak(func(_ int, th *goquery.Selection) bool {
		if strings.TrimSpace(th.Text()) != "優待権利日" {
			return true
		}
		if m := monthRe.FindStringSubmatch(th.Next().Text()); m != nil {
			stock.SettlementMonth = parseInt(m[1])
		}
		return false
	})

	stock.IsTaishaku = doc.Find("span.taishaku").Length() > 0
	stock.Restriction = parseRestriction(doc)
	stock.BorrowCosts = parseBorrowCostTable(doc)
	stock.Dividends = parseDividendTable(doc)
	stock.Benefit = parseBenefit(doc)

	return stock, nil
}

// parseRestriction finds the current regulation marker. seigen spans
// inside the history table are past rows, not the current state.
func parseRestriction(doc *goquery.Document) string {
	restriction := ""
	doc.Find(`span[class^="seigen"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.ParentsFiltered("table").Length() > 0 {
			return true
		}
		restriction = strings.TrimSpace(s.Text())
		return false
	})
	return restriction
}

func parseBorrowCostTable(doc *goquery.Document) []history.BorrowCostRecord {
	var records []history.BorrowCostRecord

	doc.Find("table#jsf_list tbody tr").Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() < 10 {
			return
		}

		// PC表示用のdivに完全な日付が入っている
		date := strings.TrimSpace(tds.Eq(0).Find("div.d-none.d-md-table-cell").Text())
		if date == "" {
			date = strings.TrimSpace(tds.Eq(0).Text())
		}

		record := history.BorrowCostRecord{
			Date:       date,
			Cost:       parseFloat(tds.Eq(1).Text()),
			MaxRate:    parseFloat(tds.Eq(2).Text()),
			Days:       parseInt(tds.Eq(3).Text()),
			ClosePrice: parseFloat(tds.Eq(7).Text()),
			Dividend:   parseFloat(tds.Eq(9).Text()),
		}

		if tds.Length() > 10 {
			record.Restriction = strings.TrimSpace(tds.Eq(10).Find("span").First().Text())
		}

		records = append(records, record)
	})

	return records
}

func parseDividendTable(doc *goquery.Document) []history.DividendRecord {
	var records []history.DividendRecord

	doc.Find("h3").EachWithBreak(func(_ int, h3 *goquery.Selection) bool {
		if strings.TrimSpace(h3.Text()) != "配当金" {
			return true
		}

		h3.NextAllFiltered("table").First().Find("tr").Each(func(_ int, tr *goquery.Selection) {
			tds := tr.Find("td")
			if tds.Length() < 2 {
				return
			}

			period := strings.TrimSpace(tds.Eq(0).Text())
			amount := 0.0
			if m := amountRe.FindStringSubmatch(tds.Eq(1).Text()); m != nil {
				amount, _ = strconv.ParseFloat(m[1], 64)
			}

			records = append(records, history.DividendRecord{
				Period:     period,
				Amount:     amount,
				IsForecast: strings.Contains(period, "予"),
			})
		})
		return false
	})

	return records
}

func parseBenefit(doc *goquery.Document) Benefit {
	var benefit Benefit

	body := doc.Find("div.yuutai-body").First()
	if body.Length() == 0 {
		return benefit
	}

	benefit.Title = strings.TrimSpace(body.Find("h3").First().Text())
	benefit.Content = strings.TrimSpace(body.Find("p").First().Text())

	body.Find("table").First().Find("tr").Each(func(_ int, tr *goquery.Selection) {
		th := tr.Find("th").First()
		td := tr.Find("td").First()
		if th.Length() == 0 || td.Length() == 0 {
			return
		}

		tier := BenefitTier{Description: strings.TrimSpace(td.Text())}
		if m := numberRe.FindStringSubmatch(th.Text()); m != nil {
			tier.Shares = parseInt(m[1])
		}
		if m := numberRe.FindStringSubmatch(td.Text()); m != nil {
			tier.Value = parseInt(m[1])
		}

		benefit.Tiers = append(benefit.Tiers, tier)
	})

	return benefit
}

// ParseMonthDir parses every cached detail page of one month's
// directory, code order. Pages that fail to parse are logged by the
// caller via the error slice in the result.
func ParseMonthDir(dir string) ([]*ParsedStock, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".html") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var stocks []*ParsedStock
	for _, name := range names {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return stocks, fmt.Errorf("failed to open %s: %w", name, err)
		}

		stock, err := Parse(f)
		f.Close()
		if err != nil {
			// ページ構造が違うファイルは読み飛ばす
			continue
		}
		stocks = append(stocks, stock)
	}

	return stocks, nil
}

// parseFloat parses a comma-grouped number, empty or malformed as 0.
func parseFloat(text string) float64 {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if text == "" {
		return 0
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(text string) int {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if text == "" {
		return 0
	}
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0
	}
	return v
}
