package history

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Store reads and writes per-code history CSVs, one file per code
// under the borrow-cost and dividend directories.
type Store struct {
	borrowDir   string
	dividendDir string
}

// NewStore creates a history store over the two directories.
func NewStore(borrowDir, dividendDir string) *Store {
	return &Store{borrowDir: borrowDir, dividendDir: dividendDir}
}

// Load reads both histories for a code. Missing files yield empty
// histories, not errors: absence is a steady-state condition.
func (s *Store) Load(code string) (*Stock, error) {
	stock := &Stock{Code: code}

	borrow, err := s.loadBorrowCosts(code)
	if err != nil {
		return nil, err
	}
	stock.BorrowCosts = borrow

	dividends, err := s.loadDividends(code)
	if err != nil {
		return nil, err
	}
	stock.Dividends = dividends

	return stock, nil
}

func (s *Store) loadBorrowCosts(code string) ([]BorrowCostRecord, error) {
	rows, err := readCSV(filepath.Join(s.borrowDir, code+".csv"))
	if err != nil || rows == nil {
		return nil, err
	}

	var records []BorrowCostRecord
	for i, row := range rows {
		if i == 0 || len(row) < 7 {
			continue
		}
		records = append(records, BorrowCostRecord{
			Date:        row[0],
			Cost:        atofOrZero(row[1]),
			MaxRate:     atofOrZero(row[2]),
			Days:        atoiOrZero(row[3]),
			Dividend:    atofOrZero(row[4]),
			ClosePrice:  atofOrZero(row[5]),
			Restriction: strings.TrimSpace(row[6]),
		})
	}
	return records, nil
}

func (s *Store) loadDividends(code string) ([]DividendRecord, error) {
	rows, err := readCSV(filepath.Join(s.dividendDir, code+".csv"))
	if err != nil || rows == nil {
		return nil, err
	}

	var records []DividendRecord
	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			continue
		}
		records = append(records, DividendRecord{
			Period:     row[0],
			Amount:     atofOrZero(row[1]),
			IsForecast: row[2] == "true" || row[2] == "True",
		})
	}
	return records, nil
}

// SaveBorrowCosts writes one code's borrow-cost history.
func (s *Store) SaveBorrowCosts(code string, records []BorrowCostRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := os.MkdirAll(s.borrowDir, 0o755); err != nil {
		return err
	}

	rows := [][]string{{"date", "gyaku_hiboku", "max_rate", "days", "dividend", "close_price", "restriction"}}
	for _, r := range records {
		rows = append(rows, []string{
			r.Date,
			formatFloat(r.Cost),
			formatFloat(r.MaxRate),
			strconv.Itoa(r.Days),
			formatFloat(r.Dividend),
			formatFloat(r.ClosePrice),
			r.Restriction,
		})
	}

	return writeCSV(filepath.Join(s.borrowDir, code+".csv"), rows)
}

// SaveDividends writes one code's dividend history.
func (s *Store) SaveDividends(code string, records []DividendRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := os.MkdirAll(s.dividendDir, 0o755); err != nil {
		return err
	}

	rows := [][]string{{"period", "amount", "is_forecast"}}
	for _, r := range records {
		rows = append(rows, []string{
			r.Period,
			formatFloat(r.Amount),
			strconv.FormatBool(r.IsForecast),
		})
	}

	return writeCSV(filepath.Join(s.dividendDir, code+".csv"), rows)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open history csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create history csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
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
