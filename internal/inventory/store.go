package inventory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// snapshot files are named zaiko_MM_YYYYMMDD.json; the date suffix,
// not filesystem order, decides which capture is authoritative.
var snapshotNameRe = regexp.MustCompile(`^zaiko_(\d{2})_(\d{8})\.json$`)

// Store reads and writes monthly snapshot files in a directory.
type Store struct {
	dir string
}

// NewStore creates a snapshot store over dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save writes a snapshot as zaiko_MM_YYYYMMDD.json.
func (s *Store) Save(snap *Snapshot) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, fmt.Sprintf("zaiko_%02d_%s.json", snap.Month, snap.Stamp))

	data, err := json.MarshalIndent(snap.Stocks, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadLatest returns the most recently captured snapshot for a month,
// or nil when no snapshot exists for it.
func (s *Store) LoadLatest(month int) (*Snapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}

	var stamps []string
	for _, e := range entries {
		m := snapshotNameRe.FindStringSubmatch(e.Name())
		if m == nil || m[1] != fmt.Sprintf("%02d", month) {
			continue
		}
		stamps = append(stamps, m[2])
	}

	if len(stamps) == 0 {
		return nil, nil
	}

	// Latest capture date wins
	sort.Sort(sort.Reverse(sort.StringSlice(stamps)))
	return s.load(month, stamps[0])
}

func (s *Store) load(month int, stamp string) (*Snapshot, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("zaiko_%02d_%s.json", month, stamp))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	stocks := make(map[string]*Stock)
	if err := json.Unmarshal(data, &stocks); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	for code, stock := range stocks {
		stock.Code = code
	}

	return &Snapshot{Month: month, Stamp: stamp, Stocks: stocks}, nil
}
