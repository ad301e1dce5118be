package suite

import (
	"fmt"
	"strings"

	"testafy/pkg/testafy"
)

// Evaluate returns one message per unmet expectation.
func (e Expectation) Evaluate(status testafy.Status, stats testafy.Stats, tap string) []string {
	var failures []string

	want := e.Status
	if want == "" {
		want = testafy.StatusCompleted
	}
	if status != want {
		failures = append(failures, fmt.Sprintf("status is %s, expected %s", status, want))
	}

	failedMax := 0
	if e.FailedMax != nil {
		failedMax = *e.FailedMax
	}
	if stats.Failed > failedMax {
		failures = append(failures, fmt.Sprintf("%d checks failed, at most %d allowed", stats.Failed, failedMax))
	}

	if e.PassedMin != nil && stats.Passed < *e.PassedMin {
		failures = append(failures, fmt.Sprintf("%d checks passed, at least %d required", stats.Passed, *e.PassedMin))
	}

	if e.Planned != nil && stats.Planned != *e.Planned {
		failures = append(failures, fmt.Sprintf("%d checks planned, expected %d", stats.Planned, *e.Planned))
	}

	for _, s := range e.Contains {
		if !strings.Contains(tap, s) {
			failures = append(failures, fmt.Sprintf("results do not contain %q", s))
		}
	}
	return failures
}
