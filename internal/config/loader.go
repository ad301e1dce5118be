package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"testafy/pkg/logging"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/testafy"
	configFileName = "config.yaml"

	envBaseURI      = "TESTAFY_BASE_URI"
	envLogin        = "TESTAFY_LOGIN"
	envPassword     = "TESTAFY_PASSWORD"
	envProduct      = "TESTAFY_PRODUCT"
	envPollInterval = "TESTAFY_POLL_INTERVAL"
	envMaxWait      = "TESTAFY_MAX_WAIT"
	envLogLevel     = "TESTAFY_LOG_LEVEL"
	envLogFormat    = "TESTAFY_LOG_FORMAT"
)

// osUserHomeDir is replaced in tests.
var osUserHomeDir = os.UserHomeDir

// GetDefaultConfigPath returns ~/.config/testafy.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads config.yaml from configPath on top of the defaults. A
// missing file is not an error. An empty configPath means the default path.
func LoadConfig(configPath string) (TestafyConfig, error) {
	config := GetDefaultConfig()

	if configPath == "" {
		p, err := GetDefaultConfigPath()
		if err != nil {
			return config, err
		}
		configPath = p
	}

	configFilePath := filepath.Join(configPath, configFileName)
	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		return TestafyConfig{}, fmt.Errorf("error reading config from %s: %w", configFilePath, err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return TestafyConfig{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}
	logging.Debug("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}

// LoadDotEnv loads the given .env files, or ./.env when none are given, into
// the process environment. Variables that are already set are kept. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load %s: %w", strings.Join(existing, ", "), err)
	}
	logging.Debug("ConfigLoader", "Loaded environment from %s", strings.Join(existing, ", "))
	return nil
}

// ApplyEnv overrides config with the TESTAFY_* variables from lookup.
// Pass os.LookupEnv for the process environment.
func ApplyEnv(config *TestafyConfig, lookup func(string) (string, bool)) error {
	setString := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	setString(envBaseURI, &config.BaseURI)
	setString(envLogin, &config.Login)
	setString(envPassword, &config.Password)
	setString(envProduct, &config.Product)
	setString(envLogLevel, &config.Logging.Level)
	setString(envLogFormat, &config.Logging.Format)

	var errs ValidationErrors
	setDuration := func(key string, dst *time.Duration) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs.Add(key, "is not a valid duration", v)
			return
		}
		*dst = d
	}
	setDuration(envPollInterval, &config.Polling.Interval)
	setDuration(envMaxWait, &config.Polling.MaxWait)

	if errs.HasErrors() {
		return errs
	}
	return nil
}
