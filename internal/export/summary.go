package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/scrape"
	"leadscout-engine/internal/scrape/types"
)

// WriteSummary renders the run report as a plain-text file next to the
// exports.
func WriteSummary(res *scrape.RunResult, postings []domain.JobPosting, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	var b strings.Builder
	line := strings.Repeat("=", 60)
	thin := strings.Repeat("-", 60)

	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "Job Scraping Summary")
	fmt.Fprintln(&b, line)
	if res.RunID != "" {
		fmt.Fprintf(&b, "Run:      %s\n", res.RunID)
	}
	fmt.Fprintf(&b, "Started:  %s\n", res.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Finished: %s\n", res.FinishedAt.Format(time.RFC3339))
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, thin)
	fmt.Fprintln(&b, "Scraping Results")
	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "Total Jobs Fetched:   %d\n", res.TotalFetched)
	fmt.Fprintf(&b, "After Deduplication:  %d\n", res.TotalAfterDedup)
	fmt.Fprintf(&b, "Unique Companies:     %d\n", uniqueCompanies(postings))
	fmt.Fprintf(&b, "Avg Quality Score:    %.2f\n", res.AvgQualityScore)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, thin)
	fmt.Fprintln(&b, "Role Breakdown")
	fmt.Fprintln(&b, thin)
	for _, rr := range res.Roles {
		fmt.Fprintf(&b, "%-30s %-8s fetched=%d\n", rr.Role, rr.Status(), rr.Fetched)
		for _, f := range rr.Failures {
			fmt.Fprintf(&b, "  %s: %s (%s)\n", f.Board, f.Kind, f.Err)
		}
	}
	fmt.Fprintln(&b)

	if len(res.ErrorCounts) > 0 {
		fmt.Fprintln(&b, thin)
		fmt.Fprintln(&b, "Errors")
		fmt.Fprintln(&b, thin)
		kinds := make([]string, 0, len(res.ErrorCounts))
		for k := range res.ErrorCounts {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Fprintf(&b, "%-20s %d\n", k, res.ErrorCounts[types.Kind(k)])
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	return nil
}

func uniqueCompanies(postings []domain.JobPosting) int {
	seen := map[string]bool{}
	for _, p := range postings {
		seen[strings.ToLower(p.CompanyName)] = true
	}
	return len(seen)
}

// SummaryPath names a timestamped summary file under dir.
func SummaryPath(dir string, ts time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("summary_%s.txt", ts.Format("20060102_150405")))
}
