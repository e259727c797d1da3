package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RateLimit struct {
	MaxRequestsPerHour int     `yaml:"max_requests_per_hour"`
	MinDelaySeconds    float64 `yaml:"min_delay_seconds"`
	MaxDelaySeconds    float64 `yaml:"max_delay_seconds"`
}

func (r RateLimit) MinDelay() time.Duration {
	return time.Duration(r.MinDelaySeconds * float64(time.Second))
}

func (r RateLimit) MaxDelay() time.Duration {
	return time.Duration(r.MaxDelaySeconds * float64(time.Second))
}

type Config struct {
	App struct {
		DataDir   string `yaml:"data_dir"`
		OutputDir string `yaml:"output_dir"`
	} `yaml:"app"`

	Search struct {
		Roles             []string `yaml:"roles"`
		Location          string   `yaml:"location"`
		MaxResultsPerRole int      `yaml:"max_results_per_role"`
	} `yaml:"search"`

	Sources struct {
		Wellfound struct {
			Enabled bool `yaml:"enabled"`
		} `yaml:"wellfound"`
		Indeed struct {
			Enabled bool `yaml:"enabled"`
		} `yaml:"indeed"`
	} `yaml:"sources"`

	RateLimit RateLimit `yaml:"rate_limit"`

	// UserAgents overrides the built-in pool when non-empty.
	UserAgents []string `yaml:"user_agents"`

	Run struct {
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"run"`

	Proxy struct {
		Enabled  bool   `yaml:"enabled"`
		Endpoint string `yaml:"endpoint"`
	} `yaml:"proxy"`

	Export struct {
		Excel bool `yaml:"excel"`
	} `yaml:"export"`
}

// Default is the config written on first run.
func Default() Config {
	var cfg Config
	cfg.App.DataDir = "."
	cfg.App.OutputDir = "output"
	cfg.Search.Roles = []string{"Data Scientist", "Data Engineer"}
	cfg.Search.Location = "Austin, TX"
	cfg.Search.MaxResultsPerRole = 50
	cfg.Sources.Wellfound.Enabled = true
	cfg.Sources.Indeed.Enabled = true
	cfg.RateLimit.MaxRequestsPerHour = 50
	cfg.RateLimit.MinDelaySeconds = 3
	cfg.RateLimit.MaxDelaySeconds = 8
	cfg.Run.TimeoutSeconds = 300
	cfg.Export.Excel = true
	return cfg
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
