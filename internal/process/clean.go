package process

import (
	"fmt"
	"strings"
	"time"

	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/scrape/types"
	"leadscout-engine/internal/scrape/util"
)

const summaryMaxRunes = 500

// companySuffixes are stripped before fingerprinting so "Acme, Inc." and
// "Acme" deduplicate. Longest forms first.
var companySuffixes = []string{
	", Incorporated", " Incorporated",
	", Corporation", " Corporation",
	", Inc.", " Inc.", ", Inc", " Inc",
	", LLC", " LLC",
	", Ltd.", " Ltd.", ", Ltd", " Ltd",
	", Corp.", " Corp.", ", Corp", " Corp",
	", Co.", " Co.",
}

// usStates recognizes "City, ST" locations.
var usStates = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true,
	"CT": true, "DE": true, "FL": true, "GA": true, "HI": true, "ID": true,
	"IL": true, "IN": true, "IA": true, "KS": true, "KY": true, "LA": true,
	"ME": true, "MD": true, "MA": true, "MI": true, "MN": true, "MS": true,
	"MO": true, "MT": true, "NE": true, "NV": true, "NH": true, "NJ": true,
	"NM": true, "NY": true, "NC": true, "ND": true, "OH": true, "OK": true,
	"OR": true, "PA": true, "RI": true, "SC": true, "SD": true, "TN": true,
	"TX": true, "UT": true, "VT": true, "VA": true, "WA": true, "WV": true,
	"WI": true, "WY": true, "DC": true,
}

// Normalize turns a raw board lead into a posting. Pure: the same lead and
// scrape time always produce the same posting. Missing fields degrade the
// quality score instead of failing.
func Normalize(raw types.RawLead, scrapedAt time.Time) domain.JobPosting {
	p := domain.JobPosting{
		JobID:            jobID(raw),
		Source:           raw.Source,
		Title:            CleanText(raw.Title),
		CompanyName:      CleanCompanyName(raw.Company),
		Location:         NormalizeLocation(raw.Location),
		Summary:          truncate(CleanText(raw.Summary), summaryMaxRunes),
		URL:              util.CanonicalizeURL(raw.URL),
		DatePosted:       CleanText(raw.DatePosted),
		DateScraped:      scrapedAt.UTC(),
		ValidationStatus: domain.ValidationPending,
	}
	if r := CleanText(raw.Role); r != "" {
		p.RoleCategories = []string{r}
	}
	p.DataQualityScore = QualityScore(p)
	return p
}

func jobID(raw types.RawLead) string {
	id := strings.TrimSpace(raw.SourceJobID)
	if id == "" {
		// no board-native id; fall back to the canonical URL
		id = "url:" + util.CanonicalizeURL(raw.URL)
	}
	return fmt.Sprintf("%s:%s", raw.Source, id)
}

// CleanText collapses whitespace, including non-breaking spaces.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// CleanCompanyName drops a single legal suffix after whitespace cleanup.
// Matching is case-insensitive so "ACME CORP" and "Acme Corp" clean the same.
func CleanCompanyName(name string) string {
	name = CleanText(name)
	low := strings.ToLower(name)
	for _, suf := range companySuffixes {
		if strings.HasSuffix(low, strings.ToLower(suf)) {
			name = strings.TrimSpace(name[:len(name)-len(suf)])
			break
		}
	}
	return name
}

// NormalizeLocation aims for "City, ST" or "City, Country". Country tails
// that add nothing ("United States", "USA") are dropped; unrecognized forms
// pass through cleaned but otherwise unchanged.
func NormalizeLocation(loc string) string {
	loc = CleanText(loc)
	if loc == "" {
		return ""
	}
	loc = strings.TrimPrefix(loc, "Location:")
	loc = strings.TrimPrefix(loc, "LOCATIONS:")
	loc = CleanText(loc)

	parts := strings.Split(loc, ",")
	var out []string
	for _, p := range parts {
		p = CleanText(p)
		if p == "" {
			continue
		}
		up := strings.ToUpper(p)
		if up == "UNITED STATES" || up == "USA" || up == "US" {
			continue
		}
		if usStates[up] {
			p = up
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return ""
	}
	// keep at most City, Region
	if len(out) > 2 {
		out = out[:2]
	}
	return strings.Join(out, ", ")
}

// expectedFields are the fields a complete posting carries; the quality
// score is the non-empty fraction of them.
func expectedFields(p domain.JobPosting) []string {
	dateScraped := ""
	if !p.DateScraped.IsZero() {
		dateScraped = p.DateScraped.Format(time.RFC3339)
	}
	return []string{
		p.Title,
		p.CompanyName,
		p.Location,
		p.Summary,
		p.URL,
		p.DatePosted,
		dateScraped,
		p.CompanyRevenueRange,
		p.CompanySize,
		p.FundingStage,
	}
}

// QualityScore computes the completeness score in [0,1], rounded to two
// decimals. Recompute whenever a content or enrichment field changes.
func QualityScore(p domain.JobPosting) float64 {
	fields := expectedFields(p)
	n := 0
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			n++
		}
	}
	score := float64(n) / float64(len(fields))
	return float64(int(score*100+0.5)) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
