package process

import (
	"sort"
	"strings"
	"sync"

	"leadscout-engine/internal/domain"
)

// Deduplicator accumulates postings across all (role, location) searches in
// a run and collapses the ones describing the same listing. Add is safe for
// concurrent use; board fetchers feed it from separate goroutines.
type Deduplicator struct {
	mu    sync.Mutex
	byKey map[string]*domain.JobPosting
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{byKey: make(map[string]*domain.JobPosting)}
}

// Fingerprint keys a posting by company + title + location, case-insensitive
// and whitespace-collapsed.
func Fingerprint(company, title, location string) string {
	join := CleanText(company) + "|" + CleanText(title) + "|" + CleanText(location)
	return strings.ToLower(join)
}

func (d *Deduplicator) Add(p domain.JobPosting) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := Fingerprint(p.CompanyName, p.Title, p.Location)
	cur, ok := d.byKey[key]
	if !ok {
		cp := p
		d.byKey[key] = &cp
		return
	}
	*cur = merge(*cur, p)
}

// merge resolves a fingerprint collision:
//   - identity fields come from the record scraped first
//   - role categories union across both, first-seen order
//   - enrichment fields come from the higher-quality record
func merge(a, b domain.JobPosting) domain.JobPosting {
	older, newer := a, b
	if b.DateScraped.Before(a.DateScraped) {
		older, newer = b, a
	}

	out := older
	for _, r := range newer.RoleCategories {
		if !out.HasRole(r) {
			out.RoleCategories = append(out.RoleCategories, r)
		}
	}

	if a.DataQualityScore < b.DataQualityScore {
		out.CompanyRevenueRange = b.CompanyRevenueRange
		out.CompanySize = b.CompanySize
		out.FundingStage = b.FundingStage
		out.HiringManagerName = b.HiringManagerName
		out.HiringManagerTitle = b.HiringManagerTitle
		out.HiringManagerContact = b.HiringManagerContact
		out.ContactSource = b.ContactSource
	} else {
		out.CompanyRevenueRange = a.CompanyRevenueRange
		out.CompanySize = a.CompanySize
		out.FundingStage = a.FundingStage
		out.HiringManagerName = a.HiringManagerName
		out.HiringManagerTitle = a.HiringManagerTitle
		out.HiringManagerContact = a.HiringManagerContact
		out.ContactSource = a.ContactSource
	}

	out.DataQualityScore = QualityScore(out)
	return out
}

func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.byKey)
}

// Finalize returns the deduplicated postings sorted by DateScraped
// descending, ties broken by JobID ascending. Idempotent: repeated calls
// without intervening Add return the same sequence.
func (d *Deduplicator) Finalize() []domain.JobPosting {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]domain.JobPosting, 0, len(d.byKey))
	for _, p := range d.byKey {
		cp := *p
		cp.RoleCategories = append([]string(nil), p.RoleCategories...)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateScraped.Equal(out[j].DateScraped) {
			return out[i].DateScraped.After(out[j].DateScraped)
		}
		return out[i].JobID < out[j].JobID
	})
	return out
}
