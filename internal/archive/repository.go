// Package archive persists computed performance runs to PostgreSQL so
// past opportunity tables can be compared after the fact. Archiving is
// optional: the rest of the system runs entirely off flat files.
package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/3vaseline3-ai/yuutai-site/internal/perform"
)

// Repository handles performance-run persistence
// ⭐ SSOT: アーカイブへの書き込みはこのリポジトリでのみ
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository instance
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the archive tables when they do not exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS performance_runs (
			id          BIGSERIAL PRIMARY KEY,
			run_at      TIMESTAMPTZ NOT NULL,
			result_rows INT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS performance_results (
			run_id           BIGINT NOT NULL REFERENCES performance_runs(id) ON DELETE CASCADE,
			code             TEXT NOT NULL,
			name             TEXT NOT NULL,
			settlement_month INT NOT NULL,
			price            DOUBLE PRECISION NOT NULL,
			required_shares  INT NOT NULL,
			is_differential  BOOLEAN NOT NULL,
			yuutai_value     DOUBLE PRECISION NOT NULL,
			gyaku_hiboku     DOUBLE PRECISION NOT NULL,
			dividend         DOUBLE PRECISION NOT NULL,
			performance      DOUBLE PRECISION NOT NULL,
			restriction      TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_performance_results_code
			ON performance_results (code, run_id);
	`

	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create archive schema: %w", err)
	}
	return nil
}

// SaveRun stores one computed run and all its result rows in a single
// transaction.
func (r *Repository) SaveRun(ctx context.Context, runAt time.Time, results []perform.Result) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin archive tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var runID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO performance_runs (run_at, result_rows) VALUES ($1, $2) RETURNING id`,
		runAt, len(results),
	).Scan(&runID)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	rows := make([][]interface{}, len(results))
	for i, res := range results {
		rows[i] = []interface{}{
			runID,
			res.Code,
			res.Name,
			res.SettlementMonth,
			res.Price,
			res.Shares.Count,
			res.Shares.IsDifferential,
			res.Value,
			res.BorrowCost,
			res.Dividend,
			res.Performance,
			res.Restriction,
		}
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"performance_results"},
		[]string{
			"run_id", "code", "name", "settlement_month", "price",
			"required_shares", "is_differential", "yuutai_value",
			"gyaku_hiboku", "dividend", "performance", "restriction",
		},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy results: %w", err)
	}

	return tx.Commit(ctx)
}

// RunSummary is one archived run's header row.
type RunSummary struct {
	ID         int64
	RunAt      time.Time
	ResultRows int
}

// ListRuns returns the most recent runs, newest first.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, run_at, result_rows FROM performance_runs ORDER BY run_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var run RunSummary
		if err := rows.Scan(&run.ID, &run.RunAt, &run.ResultRows); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// HistoryPoint is one archived performance observation for a code.
type HistoryPoint struct {
	RunAt       time.Time
	Performance float64
	BorrowCost  float64
	Price       float64
}

// CodeHistory returns a code's archived performance over time, oldest
// first, for trend inspection.
func (r *Repository) CodeHistory(ctx context.Context, code string, limit int) ([]HistoryPoint, error) {
	if limit <= 0 {
		limit = 90
	}

	rows, err := r.db.Query(ctx, `
		SELECT pr.run_at, res.performance, res.gyaku_hiboku, res.price
		FROM performance_results res
		JOIN performance_runs pr ON pr.id = res.run_id
		WHERE res.code = $1 AND NOT res.is_differential
		ORDER BY pr.run_at ASC
		LIMIT $2`,
		code, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query code history: %w", err)
	}
	defer rows.Close()

	var points []HistoryPoint
	for rows.Next() {
		var p HistoryPoint
		if err := rows.Scan(&p.RunAt, &p.Performance, &p.BorrowCost, &p.Price); err != nil {
			return nil, fmt.Errorf("scan history point: %w", err)
		}
		points = append(points, p)
	}

	return points, rows.Err()
}
