package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"testafy/internal/config"
	"testafy/pkg/logging"
	"testafy/pkg/testafy"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfig indicates missing or invalid configuration.
	ExitCodeConfig = 2
	// ExitCodeClientRequest indicates the service rejected the request.
	ExitCodeClientRequest = 3
	// ExitCodeService indicates the service failed or could not be reached.
	ExitCodeService = 4
	// ExitCodeTestsFailed indicates a run or suite finished with failures.
	ExitCodeTestsFailed = 5
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath    string
	envFile       string
	baseURI       string
	login         string
	password      string
	product       string
	logLevel      string
	logFormat     string
	output        string
	pollInterval  time.Duration
	maxWait       time.Duration
	retryAttempts uint
	httpTimeout   time.Duration
}

var (
	// rootCmd represents the base command when called without any subcommands.
	rootCmd = newRootCmd()

	// appVersion is kept apart from rootCmd so commands can read it without
	// an initialization cycle.
	appVersion = "dev"
)

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "testafy",
		Short: "Run behavioral tests on the Testafy service",
		Long: `testafy submits behavioral test scripts to the Testafy service, waits
for them to finish and reports their results.

Credentials and the service address are read, in increasing order of
precedence, from ~/.config/testafy/config.yaml, a .env file, TESTAFY_*
environment variables and command line flags. Use the login "try_it_now"
for anonymous trial runs.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config-path", "", "Configuration directory (default $HOME/.config/testafy)")
	pf.StringVar(&opts.envFile, "env-file", "", "Environment file to load (default ./.env when present)")
	pf.StringVar(&opts.baseURI, "base-uri", "", "Service base URI")
	pf.StringVar(&opts.login, "login", "", "Login name, or \"try_it_now\" for anonymous runs")
	pf.StringVar(&opts.password, "password", "", "Password")
	pf.StringVar(&opts.product, "product", "", "Product label sent with runs")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&opts.logFormat, "log-format", "", "Log format (text, json)")
	pf.StringVarP(&opts.output, "output", "o", "table", "Output format (table, json, yaml)")
	pf.DurationVar(&opts.pollInterval, "poll-interval", 0, "Pause between status polls")
	pf.DurationVar(&opts.maxWait, "max-wait", 0, "Maximum time to wait for a run (negative waits forever)")
	pf.UintVar(&opts.retryAttempts, "retry-attempts", 0, "Tries per status poll on transient errors")
	pf.DurationVar(&opts.httpTimeout, "http-timeout", 0, "Timeout for a single API call")

	_ = cmd.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("log-level", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	cmd.AddCommand(
		newRunCmd(opts),
		newStatusCmd(opts),
		newStatsCmd(opts),
		newResultsCmd(opts),
		newScreenshotsCmd(opts),
		newPhraseCheckCmd(opts),
		newPingCmd(opts),
		newSuiteCmd(opts),
		newWatchCmd(opts),
		newMCPServerCmd(opts),
		newShellCmd(opts),
		newVersionCmd(),
		newSelfUpdateCmd(),
	)
	return cmd
}

// load resolves the configuration: defaults, config.yaml, .env, TESTAFY_*
// variables and finally flags that were set explicitly. It also installs the
// process logger.
func (o *rootOptions) load(cmd *cobra.Command) (config.TestafyConfig, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return cfg, err
	}

	var envFiles []string
	if o.envFile != "" {
		if _, err := os.Stat(o.envFile); err != nil {
			return cfg, fmt.Errorf("env file %s: %w", o.envFile, err)
		}
		envFiles = append(envFiles, o.envFile)
	}
	if err := config.LoadDotEnv(envFiles...); err != nil {
		return cfg, err
	}
	if err := config.ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}

	o.applyFlags(cmd, &cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	level, _ := logging.ParseLevel(cfg.Logging.Level)
	format, _ := logging.ParseFormat(cfg.Logging.Format)
	logging.Init(logging.Options{Level: level, Format: format, Output: cmd.ErrOrStderr()})
	logging.Debug("CLI", "Using %s", cfg.TestConfig(""))
	return cfg, nil
}

func (o *rootOptions) applyFlags(cmd *cobra.Command, cfg *config.TestafyConfig) {
	flags := cmd.Flags()
	setString := func(name, value string, dst *string) {
		if flags.Changed(name) {
			*dst = value
		}
	}
	setString("base-uri", o.baseURI, &cfg.BaseURI)
	setString("login", o.login, &cfg.Login)
	setString("password", o.password, &cfg.Password)
	setString("product", o.product, &cfg.Product)
	setString("log-level", o.logLevel, &cfg.Logging.Level)
	setString("log-format", o.logFormat, &cfg.Logging.Format)

	if flags.Changed("poll-interval") {
		cfg.Polling.Interval = o.pollInterval
	}
	if flags.Changed("max-wait") {
		cfg.Polling.MaxWait = o.maxWait
	}
	if flags.Changed("retry-attempts") {
		cfg.Polling.RetryAttempts = o.retryAttempts
	}
	if flags.Changed("http-timeout") {
		cfg.HTTPTimeout = o.httpTimeout
	}
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return appVersion
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "testafy version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// testsFailedError reports a run or suite that finished with failures. The
// command already printed the details.
type testsFailedError struct {
	msg string
}

func (e *testsFailedError) Error() string {
	return e.msg
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var failed *testsFailedError
	if errors.As(err, &failed) {
		return ExitCodeTestsFailed
	}

	var invalid config.ValidationErrors
	if errors.As(err, &invalid) {
		return ExitCodeConfig
	}

	switch testafy.KindOf(err) {
	case testafy.KindConfiguration, testafy.KindInvalidEndpoint:
		return ExitCodeConfig
	case testafy.KindClientRequest:
		return ExitCodeClientRequest
	case testafy.KindServer, testafy.KindTransport:
		return ExitCodeService
	}

	if errors.Is(err, testafy.ErrPollTimeout) || errors.Is(err, testafy.ErrNoTestID) {
		return ExitCodeService
	}
	return ExitCodeError
}
