package config

import (
	"time"

	"testafy/pkg/testafy"
)

// TestafyConfig is the top-level configuration structure for the CLI.
type TestafyConfig struct {
	BaseURI       string          `yaml:"baseURI,omitempty"`
	Login         string          `yaml:"login,omitempty"`
	Password      string          `yaml:"password,omitempty"`
	Product       string          `yaml:"product,omitempty"`
	Screenshots   bool            `yaml:"screenshots,omitempty"`
	ResultsFormat string          `yaml:"resultsFormat,omitempty"`
	HTTPTimeout   time.Duration   `yaml:"httpTimeout,omitempty"`
	Polling       PollingConfig   `yaml:"polling"`
	Logging       LoggingConfig   `yaml:"logging"`
	Artifacts     ArtifactsConfig `yaml:"artifacts"`
	Suite         SuiteConfig     `yaml:"suite"`
}

// PollingConfig controls how long and how often runs are polled.
type PollingConfig struct {
	Interval      time.Duration `yaml:"interval,omitempty"`
	MaxWait       time.Duration `yaml:"maxWait,omitempty"`       // negative disables the limit
	RetryAttempts uint          `yaml:"retryAttempts,omitempty"` // 0 or 1 disables retries
	RetryDelay    time.Duration `yaml:"retryDelay,omitempty"`
}

type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// ArtifactsConfig selects where screenshots are saved. Bucket is a
// gocloud.dev URL and wins over Dir.
type ArtifactsConfig struct {
	Dir    string `yaml:"dir,omitempty"`
	Bucket string `yaml:"bucket,omitempty"`
}

type SuiteConfig struct {
	Parallel   int    `yaml:"parallel,omitempty"`
	FailFast   bool   `yaml:"failFast,omitempty"`
	ReportPath string `yaml:"reportPath,omitempty"`
}

// TestConfig converts the configuration into client inputs for script.
func (c TestafyConfig) TestConfig(script string) testafy.TestConfig {
	tc := testafy.NewTestConfig(c.BaseURI, c.Login, c.Password, script)
	tc.Product = c.Product
	tc.WantScreenshots = c.Screenshots
	tc.ResultsFormat = c.ResultsFormat
	return tc
}

// WaitOptions converts the polling section.
func (c TestafyConfig) WaitOptions() testafy.WaitOptions {
	opts := testafy.WaitOptions{
		PollInterval: c.Polling.Interval,
		MaxWait:      c.Polling.MaxWait,
	}
	if c.Polling.RetryAttempts > 1 {
		opts.Retry = &testafy.RetryPolicy{
			Attempts: c.Polling.RetryAttempts,
			Delay:    c.Polling.RetryDelay,
		}
	}
	return opts
}
