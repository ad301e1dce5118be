package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"testafy/internal/formatting"
	"testafy/pkg/logging"
	"testafy/pkg/testafy"
)

func (s *Server) handleRun(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	script, err := request.RequireString("script")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	config := s.base
	config.Script = script
	if product := request.GetString("product", ""); product != "" {
		config.Product = product
	}
	if request.GetBool("screenshots", false) {
		config.WantScreenshots = true
	}

	wait := s.wait
	if raw := request.GetString("max_wait", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid max_wait %q: expected a positive duration such as 5m", raw)), nil
		}
		wait.MaxWait = d
	}

	client := testafy.NewClient(config, s.clientOpts...)
	run, err := client.Submit(ctx)
	if err != nil {
		return toolError("Failed to submit test", err), nil
	}
	logging.Info("MCPServer", "Submitted test run %s", run.TestID)

	if request.GetBool("async", false) {
		return jsonResult(formatting.NewRunView(run))
	}

	_, run, err = client.Wait(ctx, run, wait)
	if err != nil {
		return toolError("Failed waiting for test", err), nil
	}

	view := formatting.NewRunView(run)
	stats, run, err := client.Stats(ctx, run)
	if err != nil {
		return toolError("Failed to fetch stats", err), nil
	}
	view.Stats = &stats

	if view.Results, run, err = client.ResultsString(ctx, run); err != nil {
		return toolError("Failed to fetch results", err), nil
	}
	if config.WantScreenshots {
		if view.Screenshots, _, err = client.ListScreenshots(ctx, run); err != nil {
			return toolError("Failed to list screenshots", err), nil
		}
	}
	return jsonResult(view)
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	run, errResult := runFromRequest(request)
	if errResult != nil {
		return errResult, nil
	}

	status, run, err := s.client("").PollStatus(ctx, run)
	if err != nil {
		return toolError("Failed to get status", err), nil
	}
	return jsonResult(struct {
		formatting.RunView
		Done bool `json:"done"`
	}{formatting.NewRunView(run), status.IsDone()})
}

func (s *Server) handleStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	run, errResult := runFromRequest(request)
	if errResult != nil {
		return errResult, nil
	}

	stats, run, err := s.client("").Stats(ctx, run)
	if err != nil {
		return toolError("Failed to get stats", err), nil
	}
	return jsonResult(struct {
		TestID string `json:"test_id"`
		testafy.Stats
	}{run.TestID, stats})
}

func (s *Server) handleResults(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	run, errResult := runFromRequest(request)
	if errResult != nil {
		return errResult, nil
	}

	tap, run, err := s.client("").ResultsString(ctx, run)
	if err != nil {
		return toolError("Failed to get results", err), nil
	}
	if tap == "" {
		return mcp.NewToolResultText(fmt.Sprintf("No results for test run %s", run.TestID)), nil
	}
	return mcp.NewToolResultText(tap), nil
}

func (s *Server) handleScreenshots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	run, errResult := runFromRequest(request)
	if errResult != nil {
		return errResult, nil
	}
	client := s.client("")

	name := request.GetString("name", "")
	if name == "" {
		names, run, err := client.ListScreenshots(ctx, run)
		if err != nil {
			return toolError("Failed to list screenshots", err), nil
		}
		if names == nil {
			names = []string{}
		}
		return jsonResult(map[string]interface{}{"test_id": run.TestID, "screenshots": names})
	}

	data, run, err := client.FetchScreenshotBase64(ctx, run, name)
	if err != nil {
		return toolError("Failed to fetch screenshot", err), nil
	}
	if data == "" {
		return mcp.NewToolResultError(fmt.Sprintf("Screenshot %s of test run %s is empty", name, run.TestID)), nil
	}
	return mcp.NewToolResultImage(fmt.Sprintf("Screenshot %s of test run %s", name, run.TestID), data, imageType(name)), nil
}

func (s *Server) handlePhraseCheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	script, err := request.RequireString("script")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	message, err := s.client(script).PhraseCheck(ctx, script)
	if err != nil {
		return toolError("Phrase check failed", err), nil
	}
	return mcp.NewToolResultText(message), nil
}

func (s *Server) handlePing(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := s.client("").Ping(ctx)
	if err != nil {
		return toolError("Ping failed", err), nil
	}
	return mcp.NewToolResultText(message), nil
}

func runFromRequest(request mcp.CallToolRequest) (testafy.TestRun, *mcp.CallToolResult) {
	testID, err := request.RequireString("test_id")
	if err != nil {
		return testafy.TestRun{}, mcp.NewToolResultError(err.Error())
	}
	if testID == "" {
		return testafy.TestRun{}, mcp.NewToolResultError("test_id must not be empty")
	}
	return testafy.RunFor(testID), nil
}

// toolError reports a failed call as a tool result, so the calling model
// sees the error kind and the service's message.
func toolError(prefix string, err error) *mcp.CallToolResult {
	msg := fmt.Sprintf("%s: %v", prefix, err)
	logging.Warn("MCPServer", "%s", msg)
	return mcp.NewToolResultError(msg)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to format result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func imageType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "image/png"
}
