package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"testafy/pkg/logging"
	"testafy/pkg/testafy"
)

const serverName = "testafy"

// Server exposes the testafy client as MCP tools over stdio.
type Server struct {
	base       testafy.TestConfig
	wait       testafy.WaitOptions
	clientOpts []testafy.Option
	mcpServer  *server.MCPServer
	tools      []string
}

// New creates a server. base supplies the endpoint and credentials for every
// tool call; wait bounds synchronous runs.
func New(base testafy.TestConfig, wait testafy.WaitOptions, version string, opts ...testafy.Option) *Server {
	mcpServer := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		base:       base,
		wait:       wait,
		clientOpts: opts,
		mcpServer:  mcpServer,
	}
	s.registerTools()
	return s
}

// Start serves MCP on stdin/stdout until the input closes.
func (s *Server) Start(ctx context.Context) error {
	logging.Info("MCPServer", "Serving %d tools over stdio", len(s.tools))
	return server.ServeStdio(s.mcpServer)
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Tools returns the names of the registered tools.
func (s *Server) Tools() []string {
	return append([]string(nil), s.tools...)
}

func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.mcpServer.AddTool(tool, handler)
	s.tools = append(s.tools, tool.Name)
}

func (s *Server) registerTools() {
	s.addTool(mcp.NewTool("testafy_run",
		mcp.WithDescription("Submit a behavioral test script. Waits for the run to finish unless async is set, then returns status, counts and TAP results."),
		mcp.WithString("script",
			mcp.Required(),
			mcp.Description("Behavioral test script"),
		),
		mcp.WithString("product",
			mcp.Description("Product label for the run"),
		),
		mcp.WithBoolean("screenshots",
			mcp.Description("Capture screenshots during the run"),
		),
		mcp.WithBoolean("async",
			mcp.Description("Return as soon as the run is queued"),
		),
		mcp.WithString("max_wait",
			mcp.Description("Maximum time to wait for the run, e.g. 5m"),
		),
	), s.handleRun)

	s.addTool(mcp.NewTool("testafy_status",
		mcp.WithDescription("Get the current status of a test run"),
		mcp.WithString("test_id",
			mcp.Required(),
			mcp.Description("Test run id"),
		),
	), s.handleStatus)

	s.addTool(mcp.NewTool("testafy_stats",
		mcp.WithDescription("Get passed, failed and planned check counts of a test run"),
		mcp.WithString("test_id",
			mcp.Required(),
			mcp.Description("Test run id"),
		),
	), s.handleStats)

	s.addTool(mcp.NewTool("testafy_results",
		mcp.WithDescription("Get the TAP results of a test run"),
		mcp.WithString("test_id",
			mcp.Required(),
			mcp.Description("Test run id"),
		),
	), s.handleResults)

	s.addTool(mcp.NewTool("testafy_screenshots",
		mcp.WithDescription("List the screenshots of a test run, or fetch one by name"),
		mcp.WithString("test_id",
			mcp.Required(),
			mcp.Description("Test run id"),
		),
		mcp.WithString("name",
			mcp.Description("Screenshot file name to fetch"),
		),
	), s.handleScreenshots)

	s.addTool(mcp.NewTool("testafy_phrase_check",
		mcp.WithDescription("Check a behavioral script for unrecognized phrases without running it"),
		mcp.WithString("script",
			mcp.Required(),
			mcp.Description("Behavioral test script"),
		),
	), s.handlePhraseCheck)

	s.addTool(mcp.NewTool("testafy_ping",
		mcp.WithDescription("Check that the service is reachable"),
	), s.handlePing)
}

// client returns a client for script, or for the base config when script is
// empty.
func (s *Server) client(script string) *testafy.Client {
	config := s.base
	if script != "" {
		config.Script = script
	}
	return testafy.NewClient(config, s.clientOpts...)
}
