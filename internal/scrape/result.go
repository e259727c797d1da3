package scrape

import (
	"time"

	"leadscout-engine/internal/scrape/types"
)

const (
	StatusOK      = "ok"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// BoardFailure is one board's terminal failure for a role, after retries.
type BoardFailure struct {
	Board string
	Kind  types.Kind
	Err   string
}

type RoleResult struct {
	Role     string
	Fetched  int
	OKBoards int
	Failures []BoardFailure
}

// Status reports the role outcome: every board succeeded, some did, or none.
func (r RoleResult) Status() string {
	switch {
	case len(r.Failures) == 0:
		return StatusOK
	case r.OKBoards > 0:
		return StatusPartial
	default:
		return StatusFailed
	}
}

// RunResult is the reporting surface for one scraping run. Per-role failures
// live here; they never abort the run.
type RunResult struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	TotalFetched    int
	TotalAfterDedup int

	Roles       []*RoleResult // ordered as configured
	ErrorCounts map[types.Kind]int

	AvgQualityScore float64
}

func newRunResult(roles []string, startedAt time.Time) *RunResult {
	res := &RunResult{
		StartedAt:   startedAt,
		ErrorCounts: make(map[types.Kind]int),
	}
	for _, role := range roles {
		res.Roles = append(res.Roles, &RoleResult{Role: role})
	}
	return res
}

func (r *RunResult) role(name string) *RoleResult {
	for _, rr := range r.Roles {
		if rr.Role == name {
			return rr
		}
	}
	rr := &RoleResult{Role: name}
	r.Roles = append(r.Roles, rr)
	return rr
}

// Failed reports whether every role failed outright.
func (r *RunResult) Failed() bool {
	if len(r.Roles) == 0 {
		return false
	}
	for _, rr := range r.Roles {
		if rr.Status() != StatusFailed {
			return false
		}
	}
	return true
}
