package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"leadscout-engine/internal/domain"
)

// ErrIOFailure wraps unwritable destinations. Fatal: there is nothing to
// show without output.
var ErrIOFailure = errors.New("export destination unwritable")

// Columns is the fixed export schema. Downstream enrichment tooling merges
// back by header name, so the order never varies between runs.
var Columns = []string{
	"job_id",
	"job_title",
	"company_name",
	"location",
	"job_summary",
	"job_url",
	"date_posted",
	"date_scraped",
	"role_category",
	"company_revenue_range",
	"company_size",
	"funding_stage",
	"hiring_manager_name",
	"hiring_manager_title",
	"hiring_manager_contact",
	"contact_source",
	"validation_status",
	"data_quality_score",
	"notes",
}

func row(p domain.JobPosting) []string {
	return []string{
		p.JobID,
		p.Title,
		p.CompanyName,
		p.Location,
		p.Summary,
		p.URL,
		p.DatePosted,
		p.DateScraped.UTC().Format(time.RFC3339),
		p.RoleCategory(),
		p.CompanyRevenueRange,
		p.CompanySize,
		p.FundingStage,
		p.HiringManagerName,
		p.HiringManagerTitle,
		p.HiringManagerContact,
		p.ContactSource,
		string(p.ValidationStatus),
		strconv.FormatFloat(p.DataQualityScore, 'f', 2, 64),
		p.Notes,
	}
}

// WriteCSV serializes postings to path: UTF-8 with byte-order mark and CRLF
// line endings, for spreadsheet tools.
func WriteCSV(postings []domain.JobPosting, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	defer f.Close()

	if _, err := f.WriteString("\uFEFF"); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	w := csv.NewWriter(f)
	w.UseCRLF = true

	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	for _, p := range postings {
		if err := w.Write(row(p)); err != nil {
			return fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	return f.Sync()
}

// CSVPath names a timestamped export file under dir.
func CSVPath(dir string, ts time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("job_leads_%s.csv", ts.Format("20060102_150405")))
}
