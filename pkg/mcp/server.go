// Package mcp exposes the diagram pipeline as MCP tools over stdio so
// agent hosts can request, generate, and validate diagrams.
package mcp

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/drawbridge-dev/drawbridge/internal/history"
	"github.com/drawbridge-dev/drawbridge/internal/mermaid"
	"github.com/drawbridge-dev/drawbridge/pkg/schema"
)

// PipelineRunner is the slice of the pipeline the tool handlers need.
type PipelineRunner interface {
	Run(ctx context.Context, s *schema.Session) *schema.Session
	Ideas(ctx context.Context) []schema.Idea
	ValidateAndRepair(ctx context.Context, source string, t schema.DiagramType) (mermaid.Verdict, string, mermaid.LadderStatus)
}

// DiagramServerDeps holds the dependencies for creating a DiagramServer.
// Store may be nil, in which case sessions are not archived and the
// history tool reports an empty list.
type DiagramServerDeps struct {
	Pipeline PipelineRunner
	Store    history.Store
	Logger   *slog.Logger
}

// DiagramServer wraps an MCP server with diagram tool handlers.
type DiagramServer struct {
	pipeline PipelineRunner
	store    history.Store
	sessions *sessionRegistry
	logger   *slog.Logger

	mcpServer *server.MCPServer
}

// NewDiagramServer creates a DiagramServer with all 5 tools registered.
func NewDiagramServer(deps DiagramServerDeps) *DiagramServer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	s := &DiagramServer{
		pipeline: deps.Pipeline,
		store:    deps.Store,
		sessions: newSessionRegistry(30 * time.Minute),
		logger:   logger,
	}

	mcpSrv := server.NewMCPServer(
		"drawbridge",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Drawbridge turns natural-language descriptions into Mermaid diagrams. Use diagram.request to analyze input and get diagram-type suggestions, diagram.generate to produce the diagram for a chosen type, diagram.validate to check and repair existing Mermaid source, diagram.ideas for starter inspiration, and diagram.history to list past sessions."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled or stdin closes.
func (s *DiagramServer) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *DiagramServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *DiagramServer) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: requestTool(), Handler: s.handleRequest},
		{Tool: generateTool(), Handler: s.handleGenerate},
		{Tool: validateTool(), Handler: s.handleValidate},
		{Tool: ideasTool(), Handler: s.handleIdeas},
		{Tool: historyTool(), Handler: s.handleHistory},
	}
}

// --- Tool definitions ---

func requestTool() mcp.Tool {
	return mcp.NewTool("diagram.request",
		mcp.WithDescription("Analyze a natural-language description and suggest suitable Mermaid diagram types"),
		mcp.WithString("input", mcp.Required(), mcp.Description("Natural-language description of what to visualize")),
	)
}

func generateTool() mcp.Tool {
	return mcp.NewTool("diagram.generate",
		mcp.WithDescription("Generate a Mermaid diagram of the chosen type, resuming an earlier request when session_id is given"),
		mcp.WithString("type", mcp.Required(), mcp.Description("Mermaid diagram type, e.g. flowchart, sequenceDiagram, erDiagram")),
		mcp.WithString("session_id", mcp.Description("Session ID returned by diagram.request (omit to start fresh from input)")),
		mcp.WithString("input", mcp.Description("Natural-language description (required when session_id is omitted)")),
		mcp.WithBoolean("export_html", mcp.Description("Also return a standalone HTML page rendering the diagram")),
	)
}

func validateTool() mcp.Tool {
	return mcp.NewTool("diagram.validate",
		mcp.WithDescription("Validate Mermaid source and repair it when broken"),
		mcp.WithString("source", mcp.Required(), mcp.Description("Mermaid diagram source to check")),
		mcp.WithString("type", mcp.Required(), mcp.Description("Expected diagram type")),
	)
}

func ideasTool() mcp.Tool {
	return mcp.NewTool("diagram.ideas",
		mcp.WithDescription("Get starter diagram ideas to inspire a first request"),
	)
}

func historyTool() mcp.Tool {
	return mcp.NewTool("diagram.history",
		mcp.WithDescription("List recently archived diagram sessions, or fetch one by ID"),
		mcp.WithString("session_id", mcp.Description("Return only the archived session with this ID")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of sessions to return (default 20)")),
	)
}
