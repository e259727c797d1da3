package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus everything wrong with
// it. Errors are fatal at startup; warnings are printed and ignored.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Search.Roles = trimList(out.Search.Roles)
	out.Search.Location = strings.TrimSpace(out.Search.Location)
	out.UserAgents = trimList(out.UserAgents)

	// search sanity
	if len(out.Search.Roles) == 0 {
		res.addErr("search.roles must list at least one role")
	}
	if out.Search.Location == "" {
		res.addWarn("search.location is empty; boards will return their default region.")
	}
	if out.Search.MaxResultsPerRole <= 0 {
		out.Search.MaxResultsPerRole = 50
	}

	if !out.Sources.Wellfound.Enabled && !out.Sources.Indeed.Enabled {
		res.addErr("no sources enabled: enable wellfound or indeed")
	}

	// courtesy policy sanity
	rl := out.RateLimit
	if rl.MaxRequestsPerHour <= 0 {
		res.addErr("rate_limit.max_requests_per_hour must be > 0")
	}
	if rl.MinDelaySeconds < 0 {
		res.addErr("rate_limit.min_delay_seconds must be >= 0")
	}
	if rl.MaxDelaySeconds < rl.MinDelaySeconds {
		res.addErr("rate_limit.max_delay_seconds must be >= min_delay_seconds")
	}
	if rl.MaxRequestsPerHour > 300 {
		res.addWarn("rate_limit.max_requests_per_hour is very high (%d); expect blocks.", rl.MaxRequestsPerHour)
	}

	if out.Run.TimeoutSeconds <= 0 {
		out.Run.TimeoutSeconds = 300
	}

	if out.Proxy.Enabled && strings.TrimSpace(out.Proxy.Endpoint) == "" {
		res.addErr("proxy.endpoint is required when proxy.enabled=true")
	}

	return out, res
}
