package domain

import (
	"strings"
	"time"
)

type Source string

const (
	SourceWellfound Source = "wellfound"
	SourceIndeed    Source = "indeed"
)

// ValidationStatus tracks the manual enrichment pass over a posting.
// Transitions are forward-only: PENDING -> COMPLETE or PENDING -> NOT_FOUND.
type ValidationStatus string

const (
	ValidationPending  ValidationStatus = "PENDING"
	ValidationComplete ValidationStatus = "COMPLETE"
	ValidationNotFound ValidationStatus = "NOT_FOUND"
)

type JobPosting struct {
	JobID  string
	Source Source

	Title       string
	CompanyName string
	Location    string
	Summary     string
	URL         string
	DatePosted  string // boards report fuzzy values ("3 days ago"); kept verbatim

	DateScraped    time.Time
	RoleCategories []string // every search role that surfaced this posting

	// Enrichment columns, filled by the manual spreadsheet pass.
	CompanyRevenueRange  string
	CompanySize          string
	FundingStage         string
	HiringManagerName    string
	HiringManagerTitle   string
	HiringManagerContact string
	ContactSource        string

	ValidationStatus ValidationStatus
	DataQualityScore float64
	Notes            string
}

// RoleCategory renders the role set as a single export cell.
func (p JobPosting) RoleCategory() string {
	return strings.Join(p.RoleCategories, "; ")
}

// HasRole reports whether role is already in the posting's role set.
func (p JobPosting) HasRole(role string) bool {
	for _, r := range p.RoleCategories {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// SetValidationStatus applies next only if the transition is legal.
// PENDING can move to COMPLETE or NOT_FOUND; nothing moves backward.
func (p *JobPosting) SetValidationStatus(next ValidationStatus) bool {
	if next == "" || next == p.ValidationStatus {
		return false
	}
	if p.ValidationStatus != ValidationPending && p.ValidationStatus != "" {
		return false
	}
	switch next {
	case ValidationComplete, ValidationNotFound:
		p.ValidationStatus = next
		return true
	case ValidationPending:
		if p.ValidationStatus == "" {
			p.ValidationStatus = next
			return true
		}
	}
	return false
}
