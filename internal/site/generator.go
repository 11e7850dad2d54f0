// Package site renders the static HTML site: a top page, per-month
// performance tables and per-stock detail pages.
package site

import (
	"embed"
	"fmt"
	"html/template"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/3vaseline3-ai/yuutai-site/internal/history"
	"github.com/3vaseline3-ai/yuutai-site/internal/interest"
	"github.com/3vaseline3-ai/yuutai-site/internal/inventory"
	"github.com/3vaseline3-ai/yuutai-site/internal/perform"
	"github.com/3vaseline3-ai/yuutai-site/pkg/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed templates/style.css
var styleCSS []byte

// Source supplies the generator's inputs. Month 0 in Results means
// every settlement month.
type Source interface {
	Results(month int) ([]perform.Result, error)
	Snapshot(month int) (*inventory.Snapshot, error)
	BorrowHistory(code string) ([]history.BorrowCostRecord, error)
}

// Row is one line of a month table: the display form of a result plus
// the merged inventory data of the month's snapshot.
type Row struct {
	perform.Display
	Zaiko        map[string]int // broker name -> available shares
	MaxGyakuRate *float64       // % per share, nil when the ceiling is unreported
}

// Generator writes the static site.
// ⭐ SSOT: HTML出力はこのジェネレーターからのみ
type Generator struct {
	logger        *logger.Logger
	outDir        string
	annualRatePct float64
	tmpl          *template.Template
}

// NewGenerator creates a site generator rendering into outDir.
func NewGenerator(log *logger.Logger, outDir string, annualRatePct float64) (*Generator, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Generator{
		logger:        log,
		outDir:        outDir,
		annualRatePct: annualRatePct,
		tmpl:          tmpl,
	}, nil
}

// GenerateAll renders the whole site: index, 12 month pages and one
// page per non-differential stock. today anchors the financing window
// calculation.
func (g *Generator) GenerateAll(src Source, today time.Time) error {
	for _, dir := range []string{g.outDir, filepath.Join(g.outDir, "months"), filepath.Join(g.outDir, "stocks")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}

	if err := os.WriteFile(filepath.Join(g.outDir, "style.css"), styleCSS, 0o644); err != nil {
		return fmt.Errorf("failed to write stylesheet: %w", err)
	}

	all, err := src.Results(0)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}

	if err := g.generateIndex(all, today); err != nil {
		return err
	}

	for month := 1; month <= 12; month++ {
		if err := g.generateMonth(src, month, today); err != nil {
			return err
		}
	}

	if err := g.generateStocks(src, all); err != nil {
		return err
	}

	g.logger.WithField("out_dir", g.outDir).Info("Site generation completed")
	return nil
}

func (g *Generator) generateIndex(all []perform.Result, today time.Time) error {
	data := struct {
		StockCount  int
		LastUpdated string
		BasePath    string
	}{
		StockCount:  len(all),
		LastUpdated: today.Format("2006-01-02 15:04"),
		BasePath:    "./",
	}

	return g.render("index.html", filepath.Join(g.outDir, "index.html"), data)
}

func (g *Generator) generateMonth(src Source, month int, today time.Time) error {
	results, err := src.Results(month)
	if err != nil {
		return fmt.Errorf("month %d results: %w", month, err)
	}

	snap, err := src.Snapshot(month)
	if err != nil {
		return fmt.Errorf("month %d snapshot: %w", month, err)
	}

	rows := make([]Row, 0, len(results))
	for _, r := range results {
		rows = append(rows, buildRow(r, snap))
	}

	data := struct {
		Month        int
		Rows         []Row
		Window       interest.Window
		CurrentMonth int
		BasePath     string
	}{
		Month:        month,
		Rows:         rows,
		Window:       interest.MonthlyWindow(time.Month(month), today, g.annualRatePct),
		CurrentMonth: int(today.Month()),
		BasePath:     "../",
	}

	out := filepath.Join(g.outDir, "months", fmt.Sprintf("%02d.html", month))
	return g.render("month.html", out, data)
}

// generateStocks renders one page per code. Differential entries
// (+N株) are tier deltas, not positions, and are skipped; the first
// remaining entry per code wins, results being performance-sorted.
func (g *Generator) generateStocks(src Source, all []perform.Result) error {
	seen := make(map[string]bool)

	for i := range all {
		r := &all[i]
		if r.Shares.IsDifferential || seen[r.Code] {
			continue
		}
		seen[r.Code] = true

		hist, err := src.BorrowHistory(r.Code)
		if err != nil {
			return fmt.Errorf("stock %s history: %w", r.Code, err)
		}

		data := struct {
			Stock    perform.Display
			History  []history.BorrowCostRecord
			BasePath string
		}{
			Stock:    r.Display(),
			History:  hist,
			BasePath: "../",
		}

		out := filepath.Join(g.outDir, "stocks", r.Code+".html")
		if err := g.render("stock.html", out, data); err != nil {
			return err
		}
	}

	return nil
}

// buildRow merges a result with the month snapshot: broker inventory,
// current restriction and the max borrow-cost rate ceiling.
func buildRow(r perform.Result, snap *inventory.Snapshot) Row {
	row := Row{Display: r.Display()}

	stock, ok := snap.Get(r.Code)
	if !ok {
		return row
	}

	row.Zaiko = make(map[string]int, len(inventory.Brokers))
	for _, b := range inventory.Brokers {
		row.Zaiko[string(b)] = stock.BrokerCount(b)
	}
	row.Restriction = stock.Restriction

	if stock.MaxGyaku != nil && r.Price > 0 && r.Shares.Count > 0 {
		perShare := float64(*stock.MaxGyaku) / float64(r.Shares.Count)
		rate := math.Round(perShare/r.Price*100*100) / 100
		row.MaxGyakuRate = &rate
	}

	return row
}

func (g *Generator) render(name, outFile string, data interface{}) error {
	f, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outFile, err)
	}
	defer f.Close()

	if err := g.tmpl.ExecuteTemplate(f, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}
