package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyResponse(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"forbidden", 403, "", ErrBlocked},
		{"too many requests", 429, "", ErrRateLimited},
		{"server error", 503, "", ErrTransient},
		{"not found", 404, "", ErrParse},
		{"ok", 200, "<html><body>jobs</body></html>", nil},
		{"captcha interstitial", 200, "Please solve this CAPTCHA to continue", ErrBlocked},
		{"cloudflare challenge", 200, `<script src="/cdn-cgi/challenge-platform/x.js">`, ErrBlocked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClassifyResponse(tt.status, tt.body)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClassifyDefaultsToTransient(t *testing.T) {
	assert.Equal(t, KindNone, Classify(nil))
	assert.Equal(t, KindBlocked, Classify(fmt.Errorf("fetch: %w", ErrBlocked)))
	assert.Equal(t, KindRateLimited, Classify(fmt.Errorf("fetch: %w", ErrRateLimited)))
	assert.Equal(t, KindParse, Classify(fmt.Errorf("fetch: %w", ErrParse)))
	assert.Equal(t, KindTransient, Classify(errors.New("dial tcp: connection refused")))
}
