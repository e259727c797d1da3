package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg, res := NormalizeAndValidate(Default())
	assert.True(t, res.OK(), "errors: %v", res.Errors)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 3*time.Second, cfg.RateLimit.MinDelay())
	assert.Equal(t, 8*time.Second, cfg.RateLimit.MaxDelay())
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"no roles", func(c *Config) { c.Search.Roles = nil }, "at least one role"},
		{"only blank roles", func(c *Config) { c.Search.Roles = []string{"  ", ""} }, "at least one role"},
		{"no sources", func(c *Config) {
			c.Sources.Wellfound.Enabled = false
			c.Sources.Indeed.Enabled = false
		}, "no sources enabled"},
		{"zero hourly cap", func(c *Config) { c.RateLimit.MaxRequestsPerHour = 0 }, "max_requests_per_hour"},
		{"negative min delay", func(c *Config) { c.RateLimit.MinDelaySeconds = -1 }, "min_delay_seconds"},
		{"max delay below min", func(c *Config) {
			c.RateLimit.MinDelaySeconds = 5
			c.RateLimit.MaxDelaySeconds = 2
		}, "max_delay_seconds"},
		{"proxy without endpoint", func(c *Config) {
			c.Proxy.Enabled = true
			c.Proxy.Endpoint = " "
		}, "proxy.endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			_, res := NormalizeAndValidate(cfg)
			require.False(t, res.OK())
			joined := ""
			for _, e := range res.Errors {
				joined += e + "\n"
			}
			assert.Contains(t, joined, tt.errSub)
		})
	}
}

func TestValidateNormalizesLists(t *testing.T) {
	cfg := Default()
	cfg.Search.Roles = []string{" Data Scientist ", "data scientist", "", "ML Engineer"}
	cfg.UserAgents = []string{"ua-1", " ua-1 ", "ua-2"}

	out, res := NormalizeAndValidate(cfg)
	require.True(t, res.OK())
	assert.Equal(t, []string{"Data Scientist", "ML Engineer"}, out.Search.Roles)
	assert.Equal(t, []string{"ua-1", "ua-2"}, out.UserAgents)
}

func TestValidateAppliesDefaults(t *testing.T) {
	cfg := Default()
	cfg.Search.MaxResultsPerRole = 0
	cfg.Run.TimeoutSeconds = -5

	out, res := NormalizeAndValidate(cfg)
	require.True(t, res.OK())
	assert.Equal(t, 50, out.Search.MaxResultsPerRole)
	assert.Equal(t, 300, out.Run.TimeoutSeconds)
}

func TestValidateWarnsWithoutFailing(t *testing.T) {
	cfg := Default()
	cfg.Search.Location = ""
	cfg.RateLimit.MaxRequestsPerHour = 500

	_, res := NormalizeAndValidate(cfg)
	assert.True(t, res.OK())
	assert.Len(t, res.Warnings, 2)
}

func TestEnsureUserConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()

	path, err := EnsureUserConfig(dir)
	require.NoError(t, err)
	require.FileExists(t, path)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Search.Roles, cfg.Search.Roles)
	assert.Equal(t, Default().RateLimit, cfg.RateLimit)

	// a second call leaves an edited file alone
	edited := []byte("search:\n  roles: [SRE]\nsources:\n  indeed:\n    enabled: true\nrate_limit:\n  max_requests_per_hour: 10\n")
	require.NoError(t, os.WriteFile(path, edited, 0o644))

	again, err := EnsureUserConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, path, again)

	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"SRE"}, cfg.Search.Roles)
	assert.Equal(t, filepath.Join(dir, "config.yml"), path)
}
