package types

import (
	"errors"
	"fmt"
	"strings"
)

// Failure taxonomy for board fetches. Adapters wrap one of these sentinels;
// the runner decides retry behavior from the kind.
var (
	ErrBlocked     = errors.New("blocked by target site")
	ErrRateLimited = errors.New("rate limited by target site")
	ErrParse       = errors.New("expected page structure missing")
	ErrTransient   = errors.New("transient network error")
)

type Kind string

const (
	KindNone        Kind = ""
	KindBlocked     Kind = "blocked"
	KindRateLimited Kind = "rate_limited"
	KindParse       Kind = "parse_failure"
	KindTransient   Kind = "transient_network"
)

func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrBlocked):
		return KindBlocked
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrParse):
		return KindParse
	default:
		return KindTransient
	}
}

// challengeMarkers are substrings that show up in bot-challenge interstitials
// even when the status code is 200.
var challengeMarkers = []string{
	"captcha",
	"cf-chl",
	"challenge-platform",
	"verify you are human",
	"unusual traffic",
}

// ClassifyResponse maps an HTTP status (plus a body sample) onto the taxonomy.
// Returns nil for statuses the adapter should go on to parse.
func ClassifyResponse(status int, bodySample string) error {
	switch {
	case status == 403:
		return fmt.Errorf("status %d: %w", status, ErrBlocked)
	case status == 429:
		return fmt.Errorf("status %d: %w", status, ErrRateLimited)
	case status >= 500:
		return fmt.Errorf("status %d: %w", status, ErrTransient)
	case status >= 400:
		return fmt.Errorf("status %d: %w", status, ErrParse)
	}

	low := strings.ToLower(bodySample)
	for _, m := range challengeMarkers {
		if strings.Contains(low, m) {
			return fmt.Errorf("challenge page (%q): %w", m, ErrBlocked)
		}
	}
	return nil
}
