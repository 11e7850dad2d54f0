// Package registry loads the entitlement registry (kachi.csv): one row
// per (stock code, required-share tier), the driving input of the
// performance engine.
package registry

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ShareCount is a required-share tier. A differential tier ("+N" in
// the registry) is an additional tranche on top of a base holding that
// is already counted by another row.
type ShareCount struct {
	Count          int
	IsDifferential bool
}

// ParseShareCount parses a registry share field. A leading '+' marks a
// differential tier. Malformed input parses to a zero count, which the
// engine later treats as a zero-performance row rather than an error.
func ParseShareCount(raw string) ShareCount {
	s := strings.TrimSpace(raw)
	diff := strings.HasPrefix(s, "+")
	s = strings.TrimPrefix(s, "+")
	s = strings.ReplaceAll(s, ",", "")

	n, err := strconv.Atoi(s)
	if err != nil {
		n = 0
	}

	return ShareCount{Count: n, IsDifferential: diff}
}

// Display formats the share count for rendering: comma-grouped, with
// the '+' prefix restored on differential tiers.
func (s ShareCount) Display() string {
	formatted := groupDigits(s.Count)
	if s.IsDifferential {
		return "+" + formatted
	}
	return formatted
}

func groupDigits(n int) string {
	if n < 0 {
		return "-" + groupDigits(-n)
	}
	digits := strconv.Itoa(n)
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// EntitlementRecord is one registry row. Immutable once loaded; the
// same code may appear on multiple rows with different share tiers.
type EntitlementRecord struct {
	Code            string
	Name            string
	SettlementMonth int // 権利確定月 1-12
	Shares          ShareCount
	Value           float64 // 優待価値（円）
	Content         string  // 優待内容
}

// Registry is the ordered list of entitlement rows.
type Registry []EntitlementRecord

// ByCode returns a code-keyed view of the registry. When a code has
// multiple tiers the last row wins, matching the ranking CLI's lookup.
func (r Registry) ByCode() map[string]EntitlementRecord {
	m := make(map[string]EntitlementRecord, len(r))
	for _, rec := range r {
		m[rec.Code] = rec
	}
	return m
}

// Load reads the registry CSV. A missing file is an empty registry.
// Malformed numeric fields fall back to zero so one bad row never
// blocks the batch.
func Load(path string) (Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open registry: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses registry rows from r. The first row is the header:
// code,name,settlement_month,required_shares,yuutai_value,yuutai_content
func Read(r io.Reader) (Registry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read registry csv: %w", err)
	}

	var records Registry
	for i, row := range rows {
		if i == 0 || len(row) < 5 {
			continue // header or short row
		}

		records = append(records, EntitlementRecord{
			Code:            strings.TrimSpace(row[0]),
			Name:            strings.TrimSpace(row[1]),
			SettlementMonth: atoiOrZero(row[2]),
			Shares:          ParseShareCount(row[3]),
			Value:           atofOrZero(row[4]),
			Content:         contentField(row),
		})
	}

	return records, nil
}

// Save writes the registry back out in the canonical column order.
func Save(path string, records Registry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create registry: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"code", "name", "settlement_month", "required_shares", "yuutai_value", "yuutai_content"}); err != nil {
		return err
	}

	for _, rec := range records {
		shares := strconv.Itoa(rec.Shares.Count)
		if rec.Shares.IsDifferential {
			shares = "+" + shares
		}
		row := []string{
			rec.Code,
			rec.Name,
			strconv.Itoa(rec.SettlementMonth),
			shares,
			strconv.FormatFloat(rec.Value, 'f', -1, 64),
			rec.Content,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func contentField(row []string) string {
	if len(row) > 5 {
		return strings.TrimSpace(row[5])
	}
	return ""
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func atofOrZero(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
