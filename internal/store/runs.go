package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"leadscout-engine/internal/scrape"
)

type RunRow struct {
	ID              int64
	StartedAt       time.Time
	FinishedAt      time.Time
	TotalFetched    int
	TotalAfterDedup int
	AvgQualityScore float64
	ErrorCounts     map[string]int
}

// InsertRun records one run's stats in the history table.
func InsertRun(ctx context.Context, db *sql.DB, res *scrape.RunResult) error {
	counts := map[string]int{}
	for k, n := range res.ErrorCounts {
		counts[string(k)] = n
	}
	b, _ := json.Marshal(counts)

	_, err := db.ExecContext(ctx, `
INSERT INTO runs(started_at, finished_at, total_fetched, total_after_dedup, avg_quality_score, error_counts)
VALUES(?,?,?,?,?,?);`,
		res.StartedAt.UTC().Format(time.RFC3339),
		res.FinishedAt.UTC().Format(time.RFC3339),
		res.TotalFetched,
		res.TotalAfterDedup,
		res.AvgQualityScore,
		string(b),
	)
	return err
}

// ListRuns returns the most recent runs, newest first.
func ListRuns(ctx context.Context, db *sql.DB, limit int) ([]RunRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx, `
SELECT id, started_at, finished_at, total_fetched, total_after_dedup, avg_quality_score, error_counts
FROM runs
ORDER BY id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		var started, finished, counts string
		if err := rows.Scan(&r.ID, &started, &finished, &r.TotalFetched, &r.TotalAfterDedup, &r.AvgQualityScore, &counts); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, started); err == nil {
			r.StartedAt = t
		}
		if t, err := time.Parse(time.RFC3339, finished); err == nil {
			r.FinishedAt = t
		}
		_ = json.Unmarshal([]byte(counts), &r.ErrorCounts)
		out = append(out, r)
	}
	return out, rows.Err()
}
