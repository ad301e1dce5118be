// Package formatting renders command results for the terminal.
//
// Every printer writes to an io.Writer in one of three formats: a rich table
// for people, or JSON and YAML for scripts.
package formatting

import (
	"fmt"
	"io"
	"strings"

	"testafy/pkg/testafy"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rich table output
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
)

// ParseFormat validates an --output value. Empty means table.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTable, nil
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return FormatTable, fmt.Errorf("unsupported output format %q (expected table, json or yaml)", s)
	}
}

// Printer writes results in a single format.
type Printer struct {
	w      io.Writer
	format OutputFormat
}

// NewPrinter creates a printer writing to w.
func NewPrinter(w io.Writer, format OutputFormat) *Printer {
	if format == "" {
		format = FormatTable
	}
	return &Printer{w: w, format: format}
}

// Format returns the printer's output format.
func (p *Printer) Format() OutputFormat {
	return p.format
}

// RunView is the serialized form of a run with its optional details.
type RunView struct {
	TestID      string         `json:"test_id" yaml:"test_id"`
	Status      testafy.Status `json:"status,omitempty" yaml:"status,omitempty"`
	Message     string         `json:"message,omitempty" yaml:"message,omitempty"`
	Error       string         `json:"error,omitempty" yaml:"error,omitempty"`
	Stats       *testafy.Stats `json:"stats,omitempty" yaml:"stats,omitempty"`
	Results     string         `json:"results,omitempty" yaml:"results,omitempty"`
	Screenshots []string       `json:"screenshots,omitempty" yaml:"screenshots,omitempty"`
}

// NewRunView builds a view from a run.
func NewRunView(run testafy.TestRun) RunView {
	return RunView{
		TestID:  run.TestID,
		Status:  run.Status,
		Message: run.LastMessage,
		Error:   run.LastError,
	}
}

// PrintRun prints a run summary.
func (p *Printer) PrintRun(view RunView) error {
	switch p.format {
	case FormatJSON:
		return p.writeJSON(view)
	case FormatYAML:
		return p.writeYAML(view)
	}

	rows := [][]interface{}{
		{"Test ID", view.TestID},
		{"Status", StatusText(view.Status)},
	}
	if view.Message != "" {
		rows = append(rows, []interface{}{"Message", view.Message})
	}
	if view.Error != "" {
		rows = append(rows, []interface{}{"Error", view.Error})
	}
	if view.Stats != nil {
		rows = append(rows,
			[]interface{}{"Passed", view.Stats.Passed},
			[]interface{}{"Failed", view.Stats.Failed},
			[]interface{}{"Planned", view.Stats.Planned})
	}
	if len(view.Screenshots) > 0 {
		rows = append(rows, []interface{}{"Screenshots", strings.Join(view.Screenshots, ", ")})
	}
	RenderKeyValue(p.w, rows)

	if view.Results != "" {
		fmt.Fprintf(p.w, "\n%s\n", view.Results)
	}
	return nil
}

// PrintStats prints check counts for a run.
func (p *Printer) PrintStats(testID string, stats testafy.Stats) error {
	view := struct {
		TestID        string `json:"test_id" yaml:"test_id"`
		testafy.Stats `yaml:",inline"`
	}{testID, stats}

	switch p.format {
	case FormatJSON:
		return p.writeJSON(view)
	case FormatYAML:
		return p.writeYAML(view)
	}

	RenderTable(p.w, []string{"TEST ID", "PASSED", "FAILED", "PLANNED"}, [][]interface{}{
		{testID, PassedText(stats.Passed), FailedText(stats.Failed), stats.Planned},
	})
	return nil
}

// PrintList prints a list of names such as screenshot file names.
func (p *Printer) PrintList(title string, items []string) error {
	if items == nil {
		items = []string{}
	}
	switch p.format {
	case FormatJSON:
		return p.writeJSON(items)
	case FormatYAML:
		return p.writeYAML(items)
	}

	if len(items) == 0 {
		fmt.Fprintln(p.w, EmptyMessage("No "+strings.ToLower(title)+" found"))
		return nil
	}
	rows := make([][]interface{}, len(items))
	for i, item := range items {
		rows[i] = []interface{}{i + 1, item}
	}
	RenderTable(p.w, []string{"#", strings.ToUpper(title)}, rows)
	return nil
}

// PrintMessage prints a single service message.
func (p *Printer) PrintMessage(key, message string) error {
	switch p.format {
	case FormatJSON:
		return p.writeJSON(map[string]string{key: message})
	case FormatYAML:
		return p.writeYAML(map[string]string{key: message})
	}
	_, err := fmt.Fprintln(p.w, message)
	return err
}
