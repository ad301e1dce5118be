package config

import (
	"time"

	"testafy/pkg/testafy"
)

const (
	// DefaultBaseURI is the public service root.
	DefaultBaseURI = "https://app.testafy.com/api/v0/"

	DefaultSuiteParallel = 4
)

// GetDefaultConfig returns the built-in configuration.
func GetDefaultConfig() TestafyConfig {
	return TestafyConfig{
		BaseURI:     DefaultBaseURI,
		HTTPTimeout: testafy.DefaultHTTPTimeout,
		Polling: PollingConfig{
			Interval:   testafy.DefaultPollInterval,
			MaxWait:    testafy.DefaultMaxWait,
			RetryDelay: time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Suite: SuiteConfig{
			Parallel: DefaultSuiteParallel,
		},
	}
}
