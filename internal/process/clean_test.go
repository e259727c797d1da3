package process

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/scrape/types"
)

var scrapedAt = time.Date(2025, 11, 3, 14, 30, 0, 0, time.UTC)

func TestNormalizeIsPure(t *testing.T) {
	raw := types.RawLead{
		Source:      domain.SourceWellfound,
		SourceJobID: "2811034",
		Title:       "  Data   Scientist ",
		Company:     "Acme Corp, Inc.",
		Location:    "Austin, TX, United States",
		Summary:     "Build models.  Ship things.",
		URL:         "https://wellfound.com/jobs/2811034-data-scientist?utm_source=feed",
		DatePosted:  "3 days ago",
		Role:        "Data Scientist",
	}

	a := Normalize(raw, scrapedAt)
	b := Normalize(raw, scrapedAt)
	require.Equal(t, a, b)
}

func TestNormalizeFields(t *testing.T) {
	raw := types.RawLead{
		Source:      domain.SourceIndeed,
		SourceJobID: "abc123",
		Title:       " Senior  Data Engineer ",
		Company:     "Initech, LLC",
		Location:    "Austin, tx, USA",
		Summary:     "ETL pipelines",
		URL:         "https://www.indeed.com/viewjob?jk=abc123&utm_campaign=x",
		DatePosted:  "Posted 5 days ago",
		Role:        "Data Engineer",
	}

	p := Normalize(raw, scrapedAt)

	assert.Equal(t, "indeed:abc123", p.JobID)
	assert.Equal(t, "Senior Data Engineer", p.Title)
	assert.Equal(t, "Initech", p.CompanyName)
	assert.Equal(t, "Austin, TX", p.Location)
	assert.Equal(t, "https://www.indeed.com/viewjob?jk=abc123", p.URL)
	assert.Equal(t, []string{"Data Engineer"}, p.RoleCategories)
	assert.Equal(t, domain.ValidationPending, p.ValidationStatus)
	assert.Equal(t, scrapedAt, p.DateScraped)
}

func TestNormalizeTruncatesSummary(t *testing.T) {
	raw := types.RawLead{
		Source:  domain.SourceIndeed,
		Title:   "X",
		Company: "Y",
		URL:     "https://example.com/j/1",
		Summary: strings.Repeat("a", 700),
		Role:    "X",
	}
	p := Normalize(raw, scrapedAt)
	assert.Len(t, p.Summary, 500)
}

func TestCleanCompanyName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme Corp, Inc.", "Acme Corp"},
		{"Acme  Corp", "Acme Corp"},
		{"Globex Corporation", "Globex"},
		{"Hooli Ltd", "Hooli"},
		{"ACME CORP", "ACME"},
		{"Vandelay", "Vandelay"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanCompanyName(tt.in))
		})
	}
}

func TestNormalizeLocation(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Austin, TX, United States", "Austin, TX"},
		{"Austin, tx", "Austin, TX"},
		{"Location: Remote", "Remote"},
		{"Berlin, Germany", "Berlin, Germany"},
		{"  ", ""},
		{"United States", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeLocation(tt.in))
		})
	}
}

func TestQualityScoreFractionOfExpectedFields(t *testing.T) {
	p := domain.JobPosting{
		Title:       "Data Scientist",
		CompanyName: "Acme",
		Location:    "Austin, TX",
		URL:         "https://example.com/j/1",
		DateScraped: scrapedAt,
	}
	// 5 of 10 expected fields present
	assert.InDelta(t, 0.5, QualityScore(p), 0.001)

	p.Summary = "things"
	p.CompanySize = "51-200"
	assert.InDelta(t, 0.7, QualityScore(p), 0.001)

	assert.InDelta(t, 0.0, QualityScore(domain.JobPosting{}), 0.001)
}
