// Package prices holds the live price snapshot: a read-only
// code→price lookup loaded once per run and injected into the engine.
package prices

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Lookup maps stock code to last-known live price. Constructed once by
// the caller and treated as read-only afterward.
type Lookup map[string]float64

// Get returns the live price for a code. The second return is false
// when no live price is known.
func (l Lookup) Get(code string) (float64, bool) {
	price, ok := l[code]
	return price, ok
}

type priceFile struct {
	UpdatedAt string             `json:"updated_at"`
	Prices    map[string]float64 `json:"prices"`
}

// Load reads the price snapshot file. A missing file is an empty
// lookup: every downstream fallback chain handles the absence.
func Load(path string) (Lookup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Lookup{}, nil
		}
		return nil, fmt.Errorf("read price snapshot: %w", err)
	}

	var file priceFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal price snapshot: %w", err)
	}

	if file.Prices == nil {
		return Lookup{}, nil
	}
	return file.Prices, nil
}

// Save writes the price snapshot with a capture timestamp.
func Save(path string, prices Lookup, capturedAt time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(priceFile{
		UpdatedAt: capturedAt.Format(time.RFC3339),
		Prices:    prices,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal price snapshot: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}
