package process

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/scrape/types"
)

func lead(company, title, location, role, id string) types.RawLead {
	return types.RawLead{
		Source:      domain.SourceWellfound,
		SourceJobID: id,
		Title:       title,
		Company:     company,
		Location:    location,
		URL:         "https://wellfound.com/jobs/" + id,
		Role:        role,
	}
}

func TestDedupUnionsRoleCategories(t *testing.T) {
	d := NewDeduplicator()
	at := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)

	d.Add(Normalize(lead("Acme Corp", "Data Scientist", "Austin, TX", "Data Scientist", "1"), at))
	d.Add(Normalize(lead("ACME CORP", "Data Scientist", "Austin, TX", "Data Engineer", "1"), at.Add(time.Minute)))

	out := d.Finalize()
	require.Len(t, out, 1)
	assert.Equal(t, []string{"Data Scientist", "Data Engineer"}, out[0].RoleCategories)
	assert.Equal(t, "Data Scientist; Data Engineer", out[0].RoleCategory())
}

func TestDedupKeepsEarlierIdentity(t *testing.T) {
	d := NewDeduplicator()
	early := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	late := early.Add(2 * time.Hour)

	first := Normalize(lead("Acme", "Data Scientist", "Austin, TX", "Data Scientist", "1"), early)
	second := Normalize(lead("Acme", "Data Scientist", "Austin, TX", "Data Scientist", "2"), late)

	// later add arrives first; the earlier-scraped record still wins identity
	d.Add(second)
	d.Add(first)

	out := d.Finalize()
	require.Len(t, out, 1)
	assert.Equal(t, first.JobID, out[0].JobID)
	assert.Equal(t, early, out[0].DateScraped)
}

func TestDedupTakesEnrichmentFromHigherQuality(t *testing.T) {
	d := NewDeduplicator()
	at := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)

	sparse := Normalize(lead("Acme", "Data Scientist", "Austin, TX", "Data Scientist", "1"), at)

	rich := Normalize(lead("Acme", "Data Scientist", "Austin, TX", "Data Scientist", "1"), at.Add(time.Minute))
	rich.Summary = "Great role"
	rich.CompanySize = "51-200"
	rich.FundingStage = "Series B"
	rich.DataQualityScore = QualityScore(rich)

	d.Add(sparse)
	d.Add(rich)

	out := d.Finalize()
	require.Len(t, out, 1)
	// identity from the earlier record, enrichment from the richer one
	assert.Equal(t, at, out[0].DateScraped)
	assert.Equal(t, "51-200", out[0].CompanySize)
	assert.Equal(t, "Series B", out[0].FundingStage)
}

func TestFinalizeOrderingAndIdempotence(t *testing.T) {
	d := NewDeduplicator()
	base := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)

	d.Add(Normalize(lead("A", "Role One", "Austin, TX", "R", "a1"), base.Add(time.Hour)))
	d.Add(Normalize(lead("B", "Role Two", "Austin, TX", "R", "b1"), base))
	d.Add(Normalize(lead("C", "Role Three", "Austin, TX", "R", "c1"), base))

	first := d.Finalize()
	second := d.Finalize()
	require.Equal(t, first, second)

	require.Len(t, first, 3)
	// newest first, ties broken by job id ascending
	assert.Equal(t, "wellfound:a1", first[0].JobID)
	assert.Equal(t, "wellfound:b1", first[1].JobID)
	assert.Equal(t, "wellfound:c1", first[2].JobID)
}

func TestFingerprintNormalization(t *testing.T) {
	assert.Equal(t,
		Fingerprint("Acme  Corp", "Data Scientist", "Austin, TX"),
		Fingerprint("ACME CORP", "data   scientist", "austin, tx"),
	)
	assert.NotEqual(t,
		Fingerprint("Acme", "Data Scientist", "Austin, TX"),
		Fingerprint("Acme", "Data Scientist", "Dallas, TX"),
	)
}
