package testafy

import (
	"context"
	"strings"

	"github.com/tidwall/gjson"
)

// ResultLine is one TAP line of a run's results, with the index the service
// assigned to it.
type ResultLine struct {
	Index int    `json:"index"`
	Line  string `json:"line"`
}

// Results fetches the run's TAP output as (index, line) pairs in the order
// the service returned them. A run that was never submitted has no results.
func (c *Client) Results(ctx context.Context, run TestRun) ([]ResultLine, TestRun, error) {
	if !run.Submitted() {
		return nil, run, nil
	}

	params := runParams(run)
	if c.config.ResultsFormat != "" {
		params["type"] = c.config.ResultsFormat
	}

	resp, run, err := c.call(ctx, run, OpResults, params)
	if err != nil {
		return nil, run, err
	}
	return decodeResults(resp.Get("results")), run, nil
}

// ResultsString fetches the results and joins the lines with newlines.
func (c *Client) ResultsString(ctx context.Context, run TestRun) (string, TestRun, error) {
	lines, run, err := c.Results(ctx, run)
	if err != nil {
		return "", run, err
	}
	return JoinResults(lines), run, nil
}

// JoinResults returns the line text of each pair joined by "\n", in order.
func JoinResults(lines []ResultLine) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.Line
	}
	return strings.Join(parts, "\n")
}

// decodeResults accepts the service's [[index, line], ...] shape. A bare
// string element is taken as a line with its position as index.
func decodeResults(v gjson.Result) []ResultLine {
	if !v.IsArray() {
		return nil
	}

	var lines []ResultLine
	for i, item := range v.Array() {
		switch {
		case item.IsArray():
			pair := item.Array()
			line := ResultLine{Index: i}
			if len(pair) > 0 {
				line.Index = int(pair[0].Int())
			}
			if len(pair) > 1 {
				line.Line = pair[1].String()
			}
			lines = append(lines, line)
		case item.Type == gjson.String:
			lines = append(lines, ResultLine{Index: i, Line: item.String()})
		}
	}
	return lines
}
