package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/process"
)

// ReadCSV parses a previously exported file (possibly hand-edited in a
// spreadsheet) back into postings. A leading byte-order mark is tolerated.
func ReadCSV(path string) ([]domain.JobPosting, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // spreadsheet tools sometimes drop trailing cells

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read export header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	if _, ok := col["job_id"]; !ok {
		return nil, fmt.Errorf("read export: job_id column missing")
	}

	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var out []domain.JobPosting
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read export row: %w", err)
		}
		p := domain.JobPosting{
			JobID:                get(rec, "job_id"),
			Title:                get(rec, "job_title"),
			CompanyName:          get(rec, "company_name"),
			Location:             get(rec, "location"),
			Summary:              get(rec, "job_summary"),
			URL:                  get(rec, "job_url"),
			DatePosted:           get(rec, "date_posted"),
			CompanyRevenueRange:  get(rec, "company_revenue_range"),
			CompanySize:          get(rec, "company_size"),
			FundingStage:         get(rec, "funding_stage"),
			HiringManagerName:    get(rec, "hiring_manager_name"),
			HiringManagerTitle:   get(rec, "hiring_manager_title"),
			HiringManagerContact: get(rec, "hiring_manager_contact"),
			ContactSource:        get(rec, "contact_source"),
			ValidationStatus:     domain.ValidationStatus(get(rec, "validation_status")),
			Notes:                get(rec, "notes"),
		}
		if p.JobID == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, get(rec, "date_scraped")); err == nil {
			p.DateScraped = t
		}
		if s, err := strconv.ParseFloat(get(rec, "data_quality_score"), 64); err == nil {
			p.DataQualityScore = s
		}
		if rc := get(rec, "role_category"); rc != "" {
			for _, part := range strings.Split(rc, ";") {
				if part = strings.TrimSpace(part); part != "" {
					p.RoleCategories = append(p.RoleCategories, part)
				}
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// MergeEnrichment copies the manually filled enrichment columns from
// enriched into base, keyed by job_id. Non-enrichment columns in base are
// never touched; validation status only moves forward; quality scores are
// recomputed for merged postings. Returns how many postings changed.
func MergeEnrichment(base []domain.JobPosting, enriched []domain.JobPosting) int {
	byID := make(map[string]*domain.JobPosting, len(base))
	for i := range base {
		byID[base[i].JobID] = &base[i]
	}

	merged := 0
	for _, e := range enriched {
		p, ok := byID[e.JobID]
		if !ok {
			continue
		}
		changed := false

		set := func(dst *string, v string) {
			if v != "" && v != *dst {
				*dst = v
				changed = true
			}
		}
		set(&p.CompanyRevenueRange, e.CompanyRevenueRange)
		set(&p.CompanySize, e.CompanySize)
		set(&p.FundingStage, e.FundingStage)
		set(&p.HiringManagerName, e.HiringManagerName)
		set(&p.HiringManagerTitle, e.HiringManagerTitle)
		set(&p.HiringManagerContact, e.HiringManagerContact)
		set(&p.ContactSource, e.ContactSource)
		set(&p.Notes, e.Notes)

		if p.SetValidationStatus(e.ValidationStatus) {
			changed = true
		}
		if changed {
			p.DataQualityScore = process.QualityScore(*p)
			merged++
		}
	}
	return merged
}
