package suite

import (
	"context"
	"time"

	"testafy/pkg/testafy"
)

// TestResult represents the result of scenario execution
type TestResult string

const (
	// ResultPassed indicates the run completed and met every expectation
	ResultPassed TestResult = "PASSED"
	// ResultFailed indicates the run finished but missed an expectation
	ResultFailed TestResult = "FAILED"
	// ResultSkipped indicates the scenario was not run
	ResultSkipped TestResult = "SKIPPED"
	// ResultError indicates the scenario could not be run to completion
	ResultError TestResult = "ERROR"
)

// TestLogger provides centralized logging for suite execution
type TestLogger interface {
	// Debug logs debug-level messages (only shown when debug=true)
	Debug(format string, args ...interface{})
	// Info logs info-level messages (shown when verbose=true or debug=true)
	Info(format string, args ...interface{})
	// Error logs error-level messages (always shown)
	Error(format string, args ...interface{})
	IsDebugEnabled() bool
	IsVerboseEnabled() bool
}

// Configuration controls a suite run.
type Configuration struct {
	// Parallel is the number of scenarios run at once
	Parallel int `yaml:"parallel" json:"parallel"`
	// FailFast stops scheduling scenarios after the first failure or error
	FailFast bool `yaml:"fail_fast" json:"fail_fast"`
	// Scenario runs only the scenario with this name
	Scenario string `yaml:"scenario,omitempty" json:"scenario,omitempty"`
	// Tags runs only scenarios carrying at least one of these tags
	Tags []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	// ReportPath is where the JSON report is written, if set
	ReportPath string `yaml:"report_path,omitempty" json:"report_path,omitempty"`
	// Verbose prints scenario details and TAP output
	Verbose bool `yaml:"verbose" json:"verbose"`
	// Debug prints poll-level progress
	Debug bool `yaml:"debug" json:"debug"`
	// Wait is applied to every scenario; a scenario timeout replaces MaxWait
	Wait testafy.WaitOptions `yaml:"-" json:"-"`
}

// Suite is the content of one suite file.
type Suite struct {
	// Name defaults to the file name
	Name string `yaml:"name"`
	// Description is shown in verbose output
	Description string `yaml:"description,omitempty"`
	// Vars are template variables shared by every scenario
	Vars map[string]interface{} `yaml:"vars,omitempty"`
	// Scenarios are run in file order
	Scenarios []Scenario `yaml:"scenarios"`
	// Path is the file the suite was loaded from
	Path string `yaml:"-"`
}

// Scenario is one behavioral script with its expectations.
type Scenario struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Script is the behavioral script text, rendered as a Go template
	Script string `yaml:"script,omitempty" json:"-"`
	// ScriptFile is read instead of Script, relative to the suite file
	ScriptFile string `yaml:"script_file,omitempty" json:"script_file,omitempty"`
	// Vars override the suite vars for this scenario
	Vars map[string]interface{} `yaml:"vars,omitempty" json:"-"`
	// Product overrides the configured product label
	Product string `yaml:"product,omitempty" json:"product,omitempty"`
	// Expect lists the conditions a finished run must meet
	Expect Expectation `yaml:"expect,omitempty" json:"expect"`
	// Screenshots asks the service to capture screenshots and saves them
	Screenshots bool `yaml:"screenshots,omitempty" json:"screenshots,omitempty"`
	// Timeout bounds the wait for this scenario's run
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	// Tags for filtering
	Tags []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	// Skip indicates whether this scenario should be skipped
	Skip bool `yaml:"skip,omitempty" json:"skip,omitempty"`

	// Suite is the name of the suite the scenario belongs to
	Suite string `yaml:"-" json:"suite"`
	// BaseDir resolves ScriptFile
	BaseDir string `yaml:"-" json:"-"`
	// SuiteVars are inherited from the suite
	SuiteVars map[string]interface{} `yaml:"-" json:"-"`
}

// Expectation is checked against a finished run. Unset limits are not
// checked, except that a run with no expectations must finish completed with
// no failed checks.
type Expectation struct {
	// Status is the terminal status the run must reach, default completed
	Status testafy.Status `yaml:"status,omitempty" json:"status,omitempty"`
	// PassedMin is the minimum number of passed checks
	PassedMin *int `yaml:"passed_min,omitempty" json:"passed_min,omitempty"`
	// FailedMax is the maximum number of failed checks, default 0
	FailedMax *int `yaml:"failed_max,omitempty" json:"failed_max,omitempty"`
	// Planned is the exact number of planned checks
	Planned *int `yaml:"planned,omitempty" json:"planned,omitempty"`
	// Contains lists substrings the TAP output must contain
	Contains []string `yaml:"contains,omitempty" json:"contains,omitempty"`
}

// ScenarioResult is the outcome of one scenario.
type ScenarioResult struct {
	Scenario    Scenario       `json:"scenario"`
	Result      TestResult     `json:"result"`
	TestID      string         `json:"test_id,omitempty"`
	Status      testafy.Status `json:"status,omitempty"`
	Stats       testafy.Stats  `json:"stats"`
	TAP         string         `json:"tap,omitempty"`
	Screenshots []string       `json:"screenshots,omitempty"`
	Failures    []string       `json:"failures,omitempty"`
	Error       string         `json:"error,omitempty"`
	Polls       int            `json:"polls"`
	StartTime   time.Time      `json:"start_time"`
	EndTime     time.Time      `json:"end_time"`
	Duration    time.Duration  `json:"duration"`
}

// SuiteResult is the outcome of a whole run.
type SuiteResult struct {
	StartTime        time.Time        `json:"start_time"`
	EndTime          time.Time        `json:"end_time"`
	Duration         time.Duration    `json:"duration"`
	TotalScenarios   int              `json:"total_scenarios"`
	PassedScenarios  int              `json:"passed_scenarios"`
	FailedScenarios  int              `json:"failed_scenarios"`
	SkippedScenarios int              `json:"skipped_scenarios"`
	ErrorScenarios   int              `json:"error_scenarios"`
	ScenarioResults  []ScenarioResult `json:"scenario_results"`
	Configuration    Configuration    `json:"configuration"`
}

// Succeeded reports whether no scenario failed or errored.
func (r SuiteResult) Succeeded() bool {
	return r.FailedScenarios == 0 && r.ErrorScenarios == 0
}

// Reporter receives progress while a suite runs. Calls may come from
// several goroutines.
type Reporter interface {
	ReportStart(config Configuration, scenarios int)
	ReportScenarioStart(scenario Scenario)
	ReportScenarioResult(result ScenarioResult)
	ReportSuiteResult(result SuiteResult)
}

// ScreenshotSink stores the screenshots of a finished run.
type ScreenshotSink interface {
	Save(ctx context.Context, testID string, shots map[string]string) ([]string, error)
}
