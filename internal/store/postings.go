package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"leadscout-engine/internal/domain"
)

// UpsertPosting inserts or replaces the stored copy of a posting, keyed by
// job_id.
func UpsertPosting(ctx context.Context, db *sql.DB, p domain.JobPosting) error {
	roles, _ := json.Marshal(p.RoleCategories)

	_, err := db.ExecContext(ctx, `
INSERT INTO postings(
  job_id, source, title, company, location, summary, url,
  date_posted, date_scraped, role_categories,
  company_revenue_range, company_size, funding_stage,
  hiring_manager_name, hiring_manager_title, hiring_manager_contact,
  contact_source, validation_status, data_quality_score, notes
) VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(job_id) DO UPDATE SET
  title=excluded.title,
  company=excluded.company,
  location=excluded.location,
  summary=excluded.summary,
  url=excluded.url,
  date_posted=excluded.date_posted,
  date_scraped=excluded.date_scraped,
  role_categories=excluded.role_categories,
  company_revenue_range=excluded.company_revenue_range,
  company_size=excluded.company_size,
  funding_stage=excluded.funding_stage,
  hiring_manager_name=excluded.hiring_manager_name,
  hiring_manager_title=excluded.hiring_manager_title,
  hiring_manager_contact=excluded.hiring_manager_contact,
  contact_source=excluded.contact_source,
  validation_status=excluded.validation_status,
  data_quality_score=excluded.data_quality_score,
  notes=excluded.notes;`,
		p.JobID, string(p.Source), p.Title, p.CompanyName, p.Location, p.Summary, p.URL,
		p.DatePosted, p.DateScraped.UTC().Format(time.RFC3339), string(roles),
		p.CompanyRevenueRange, p.CompanySize, p.FundingStage,
		p.HiringManagerName, p.HiringManagerTitle, p.HiringManagerContact,
		p.ContactSource, string(p.ValidationStatus), p.DataQualityScore, p.Notes,
	)
	return err
}

// ListPostings returns all stored postings, newest scrape first.
func ListPostings(ctx context.Context, db *sql.DB) ([]domain.JobPosting, error) {
	rows, err := db.QueryContext(ctx, `
SELECT job_id, source, title, company, location, summary, url,
       date_posted, date_scraped, role_categories,
       company_revenue_range, company_size, funding_stage,
       hiring_manager_name, hiring_manager_title, hiring_manager_contact,
       contact_source, validation_status, data_quality_score, notes
FROM postings
ORDER BY date_scraped DESC, job_id ASC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.JobPosting
	for rows.Next() {
		var p domain.JobPosting
		var source, scraped, roles, status string
		if err := rows.Scan(
			&p.JobID, &source, &p.Title, &p.CompanyName, &p.Location, &p.Summary, &p.URL,
			&p.DatePosted, &scraped, &roles,
			&p.CompanyRevenueRange, &p.CompanySize, &p.FundingStage,
			&p.HiringManagerName, &p.HiringManagerTitle, &p.HiringManagerContact,
			&p.ContactSource, &status, &p.DataQualityScore, &p.Notes,
		); err != nil {
			return nil, err
		}
		p.Source = domain.Source(source)
		p.ValidationStatus = domain.ValidationStatus(status)
		if t, err := time.Parse(time.RFC3339, scraped); err == nil {
			p.DateScraped = t
		}
		_ = json.Unmarshal([]byte(roles), &p.RoleCategories)
		out = append(out, p)
	}
	return out, rows.Err()
}
