package suite

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"testafy/internal/formatting"
)

// consoleReporter prints progress for people.
type consoleReporter struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool
}

// NewConsoleReporter creates a reporter writing to w.
func NewConsoleReporter(w io.Writer, verbose bool) Reporter {
	return &consoleReporter{w: w, verbose: verbose}
}

func (r *consoleReporter) ReportStart(config Configuration, scenarios int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.w, "🧪 Running %d scenarios\n", scenarios)
	if r.verbose {
		fmt.Fprintf(r.w, "\n⚙️  Configuration:\n")
		fmt.Fprintf(r.w, "   • Scenario: %s\n", stringOrDefault(config.Scenario, "all"))
		fmt.Fprintf(r.w, "   • Tags: %s\n", stringOrDefault(strings.Join(config.Tags, ", "), "all"))
		fmt.Fprintf(r.w, "   • Parallel workers: %d\n", config.Parallel)
		fmt.Fprintf(r.w, "   • Fail fast: %t\n", config.FailFast)
		if config.ReportPath != "" {
			fmt.Fprintf(r.w, "   • Report path: %s\n", config.ReportPath)
		}
	}
	fmt.Fprintln(r.w)
}

func (r *consoleReporter) ReportScenarioStart(sc Scenario) {
	if !r.verbose {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.w, "🎯 Starting scenario: %s (%s)\n", sc.Name, sc.Suite)
	if sc.Description != "" {
		fmt.Fprintf(r.w, "   📝 Description: %s\n", sc.Description)
	}
	if len(sc.Tags) > 0 {
		fmt.Fprintf(r.w, "   🏷️  Tags: %s\n", strings.Join(sc.Tags, ", "))
	}
	if sc.Timeout > 0 {
		fmt.Fprintf(r.w, "   ⏱️  Timeout: %v\n", sc.Timeout)
	}
}

func (r *consoleReporter) ReportScenarioResult(res ScenarioResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.w, "%s %s", resultSymbol(res.Result), res.Scenario.Name)
	if res.TestID != "" {
		fmt.Fprintf(r.w, " [%s]", res.TestID)
	}
	if res.Result == ResultPassed || res.Result == ResultFailed {
		fmt.Fprintf(r.w, " %d/%d passed", res.Stats.Passed, res.Stats.Planned)
	}
	if res.Duration > 0 {
		fmt.Fprintf(r.w, " (%v)", res.Duration.Round(time.Millisecond))
	}
	fmt.Fprintln(r.w)

	for _, f := range res.Failures {
		fmt.Fprintf(r.w, "   ❌ %s\n", f)
	}
	if res.Error != "" {
		fmt.Fprintf(r.w, "   💥 %s\n", res.Error)
	}
	if r.verbose && res.TAP != "" {
		for _, line := range strings.Split(res.TAP, "\n") {
			fmt.Fprintf(r.w, "      %s\n", line)
		}
	}
	for _, key := range res.Screenshots {
		fmt.Fprintf(r.w, "   📸 %s\n", key)
	}
}

func (r *consoleReporter) ReportSuiteResult(result SuiteResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.w)
	if len(result.ScenarioResults) > 0 {
		rows := make([][]interface{}, 0, len(result.ScenarioResults))
		for _, res := range result.ScenarioResults {
			rows = append(rows, []interface{}{
				res.Scenario.Name,
				resultSymbol(res.Result) + " " + string(res.Result),
				stringOrDefault(res.TestID, "-"),
				formatting.PassedText(res.Stats.Passed),
				formatting.FailedText(res.Stats.Failed),
				res.Stats.Planned,
				res.Duration.Round(time.Millisecond),
			})
		}
		formatting.RenderTable(r.w, []string{"SCENARIO", "RESULT", "TEST ID", "PASSED", "FAILED", "PLANNED", "DURATION"}, rows)
	}

	fmt.Fprintf(r.w, "\n📊 %d passed, %d failed, %d errors, %d skipped of %d scenarios in %v\n",
		result.PassedScenarios, result.FailedScenarios, result.ErrorScenarios,
		result.SkippedScenarios, result.TotalScenarios, result.Duration.Round(time.Millisecond))
	if result.Succeeded() {
		fmt.Fprintln(r.w, "✅ Suite passed")
	} else {
		fmt.Fprintln(r.w, "❌ Suite failed")
	}
}

// collectingReporter records results without printing, for callers that
// render the outcome themselves.
type collectingReporter struct {
	mu      sync.Mutex
	results []ScenarioResult
}

// NewCollectingReporter creates a reporter that only records results.
func NewCollectingReporter() *collectingReporter {
	return &collectingReporter{}
}

func (r *collectingReporter) ReportStart(Configuration, int) {}
func (r *collectingReporter) ReportScenarioStart(Scenario)   {}
func (r *collectingReporter) ReportSuiteResult(SuiteResult)  {}

func (r *collectingReporter) ReportScenarioResult(res ScenarioResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

// Results returns the results in completion order.
func (r *collectingReporter) Results() []ScenarioResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ScenarioResult(nil), r.results...)
}

// WriteJSONReport writes result as indented JSON, creating parent
// directories as needed.
func WriteJSONReport(path string, result SuiteResult) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

func resultSymbol(result TestResult) string {
	switch result {
	case ResultPassed:
		return "✅"
	case ResultFailed:
		return "❌"
	case ResultSkipped:
		return "⏭️"
	case ResultError:
		return "💥"
	default:
		return "❓"
	}
}

func stringOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
