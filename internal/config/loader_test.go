package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"testafy/pkg/testafy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0644))
}

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestLoadConfig_DefaultOnly(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)
	assert.Equal(t, DefaultBaseURI, cfg.BaseURI)
	assert.Equal(t, testafy.DefaultPollInterval, cfg.Polling.Interval)
}

func TestLoadConfig_DefaultPath(t *testing.T) {
	home := t.TempDir()
	original := osUserHomeDir
	defer func() { osUserHomeDir = original }()
	osUserHomeDir = func() (string, error) { return home, nil }

	dir := filepath.Join(home, userConfigDir)
	require.NoError(t, os.MkdirAll(dir, 0755))
	writeConfigFile(t, dir, "login: alice\n")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "alice", cfg.Login)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, `
baseURI: https://staging.testafy.com/api/v0/
login: alice
product: checkout
screenshots: true
polling:
  interval: 2s
  maxWait: 10m
  retryAttempts: 3
artifacts:
  dir: ./shots
suite:
  failFast: true
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://staging.testafy.com/api/v0/", cfg.BaseURI)
	assert.Equal(t, "alice", cfg.Login)
	assert.Equal(t, "checkout", cfg.Product)
	assert.True(t, cfg.Screenshots)
	assert.Equal(t, 2*time.Second, cfg.Polling.Interval)
	assert.Equal(t, 10*time.Minute, cfg.Polling.MaxWait)
	assert.Equal(t, uint(3), cfg.Polling.RetryAttempts)
	assert.Equal(t, time.Second, cfg.Polling.RetryDelay, "unset fields keep defaults")
	assert.Equal(t, "./shots", cfg.Artifacts.Dir)
	assert.True(t, cfg.Suite.FailFast)
	assert.Equal(t, DefaultSuiteParallel, cfg.Suite.Parallel)
}

func TestLoadConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "polling: [not, a, map\n")

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), configFileName)
}

func TestApplyEnv(t *testing.T) {
	cfg := GetDefaultConfig()
	err := ApplyEnv(&cfg, mapLookup(map[string]string{
		envBaseURI:      "http://localhost:9000/",
		envLogin:        "bob",
		envPassword:     "secret",
		envPollInterval: "250ms",
		envLogLevel:     "debug",
		envProduct:      "",
	}))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/", cfg.BaseURI)
	assert.Equal(t, "bob", cfg.Login)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, 250*time.Millisecond, cfg.Polling.Interval)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Empty(t, cfg.Product)
}

func TestApplyEnv_InvalidDuration(t *testing.T) {
	cfg := GetDefaultConfig()
	err := ApplyEnv(&cfg, mapLookup(map[string]string{envMaxWait: "forever"}))
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, envMaxWait, verrs[0].Field)
	assert.Equal(t, testafy.DefaultMaxWait, cfg.Polling.MaxWait)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TESTAFY_LOGIN=from-dotenv\nTESTAFY_PASSWORD=dotenv-pass\n"), 0600))

	t.Setenv(envLogin, "already-set")
	t.Setenv(envPassword, "")
	require.NoError(t, os.Unsetenv(envPassword))

	require.NoError(t, LoadDotEnv(envFile))
	assert.Equal(t, "already-set", os.Getenv(envLogin))
	assert.Equal(t, "dotenv-pass", os.Getenv(envPassword))
}

func TestLoadDotEnv_MissingFileIgnored(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestConversions(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Login = "alice"
	cfg.Password = "pw"
	cfg.Product = "checkout"
	cfg.Screenshots = true
	cfg.Polling.RetryAttempts = 3

	tc := cfg.TestConfig("then pass this test")
	assert.Equal(t, DefaultBaseURI, tc.BaseURI)
	assert.Equal(t, testafy.ModeAccount, tc.Mode)
	assert.Equal(t, "checkout", tc.Product)
	assert.True(t, tc.WantScreenshots)
	assert.Equal(t, "then pass this test", tc.Script)

	opts := cfg.WaitOptions()
	assert.Equal(t, testafy.DefaultPollInterval, opts.PollInterval)
	require.NotNil(t, opts.Retry)
	assert.Equal(t, uint(3), opts.Retry.Attempts)

	cfg.Polling.RetryAttempts = 0
	assert.Nil(t, cfg.WaitOptions().Retry)

	cfg.Login = testafy.AnonymousLogin
	assert.Equal(t, testafy.ModeAnonymous, cfg.TestConfig("").Mode)
}
