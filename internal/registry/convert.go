package registry

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// ConvertResult reports what the record-file conversion produced.
type ConvertResult struct {
	Converted    int
	MissingNames []string
}

// ConvertRecordFile converts a hand-maintained yuutai_record.csv
// (Japanese headers: コード,権利付日,株数,優待価値) into the canonical
// registry format, resolving display names through the supplied
// code→name lookup.
func ConvertRecordFile(src, dst string, names map[string]string) (*ConvertResult, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("open record file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read record file: %w", err)
	}

	var (
		records Registry
		result  ConvertResult
	)

	for i, row := range rows {
		if i == 0 || len(row) < 4 {
			continue
		}

		code := strings.TrimSpace(row[0])
		name, ok := names[code]
		if !ok {
			result.MissingNames = append(result.MissingNames, code)
		}

		records = append(records, EntitlementRecord{
			Code:            code,
			Name:            name,
			SettlementMonth: atoiOrZero(row[1]),
			Shares:          ParseShareCount(row[2]),
			Value:           atofOrZero(row[3]),
		})
	}

	if err := Save(dst, records); err != nil {
		return nil, err
	}

	result.Converted = len(records)
	return &result, nil
}
