package formatting

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"testafy/pkg/testafy"
)

// createTable creates a new table with standard styling
func createTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

// RenderTable renders rows under cyan headers.
func RenderTable(w io.Writer, headers []string, rows [][]interface{}) {
	t := createTable(w)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = text.FgHiCyan.Sprint(h)
	}
	t.AppendHeader(header)

	for _, row := range rows {
		t.AppendRow(table.Row(row))
	}
	t.Render()
}

// RenderKeyValue renders two-column key/value rows.
func RenderKeyValue(w io.Writer, rows [][]interface{}) {
	t := createTable(w)
	t.AppendHeader(table.Row{text.FgHiCyan.Sprint("KEY"), text.FgHiCyan.Sprint("VALUE")})

	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		value := fmt.Sprintf("%v", row[1])
		if len(value) > 100 {
			value = value[:97] + "..."
		}
		t.AppendRow(table.Row{text.FgHiCyan.Sprint(row[0]), value})
	}
	t.Render()
}

// StatusText colours a run status.
func StatusText(s testafy.Status) string {
	switch s {
	case testafy.StatusCompleted:
		return text.FgGreen.Sprint(s.String())
	case testafy.StatusStopped, testafy.StatusUnscheduled:
		return text.FgYellow.Sprint(s.String())
	case testafy.StatusQueued, testafy.StatusRunning:
		return text.FgHiBlue.Sprint(s.String())
	case "":
		return text.FgHiBlack.Sprint("-")
	default:
		return text.FgRed.Sprint(s.String())
	}
}

func PassedText(n int) string {
	return text.FgGreen.Sprint(n)
}

// FailedText is red only when something failed.
func FailedText(n int) string {
	if n > 0 {
		return text.FgRed.Sprint(n)
	}
	return fmt.Sprint(n)
}

// EmptyMessage formats empty result messages
func EmptyMessage(message string) string {
	return fmt.Sprintf("%s %s", text.FgYellow.Sprint("📋"), text.FgYellow.Sprint(message))
}
