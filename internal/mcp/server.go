package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-bloodwork/internal/bloodwork"
	"github.com/a3tai/mcp-bloodwork/internal/config"
	"github.com/a3tai/mcp-bloodwork/internal/descriptions"
	"github.com/a3tai/mcp-bloodwork/internal/ingest"
	"github.com/a3tai/mcp-bloodwork/internal/logging"
	"github.com/a3tai/mcp-bloodwork/internal/pdf"
	"github.com/a3tai/mcp-bloodwork/internal/storage"
)

var mcpLogger = logging.Logger(logging.SourceMCP)

const shutdownTimeout = 5 * time.Second

// Ingester stores the results of one report file.
type Ingester interface {
	IngestFile(ctx context.Context, path string, metadata bloodwork.Metadata) (*ingest.Response, error)
}

// ResultStore answers queries over stored results.
type ResultStore interface {
	QueryResult(ctx context.Context, start, end time.Time, testNames []string) (storage.Table, error)
	HistoryResult(ctx context.Context, testName string, limit int) (storage.Table, error)
	DeleteDate(ctx context.Context, date string) bool
	Ping(ctx context.Context) error
}

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	ingester  Ingester
	results   ResultStore
	uploads   *pdf.UploadDir
	backend   string
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance. backend names the store
// results go to and is only reported by the server info tool.
func NewServer(cfg *config.Config, ingester Ingester, results ResultStore, backend string) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if ingester == nil {
		return nil, fmt.Errorf("ingester cannot be nil")
	}
	if results == nil {
		return nil, fmt.Errorf("result store cannot be nil")
	}

	uploads, err := pdf.NewUploadDir(cfg.PDFDirectory)
	if err != nil {
		return nil, err
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
		server.WithRecovery(),
	)

	s := &Server{
		config:    cfg,
		ingester:  ingester,
		results:   results,
		uploads:   uploads,
		backend:   backend,
		mcpServer: mcpServer,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// MCPServer exposes the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	ingestTool := mcp.NewTool(
		descriptions.ToolIngest,
		mcp.WithDescription(descriptions.IngestDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the lab report PDF, relative to the report directory"),
		),
		mcp.WithString("name",
			mcp.Description("Patient name stored with every result"),
		),
		mcp.WithString("birthday",
			mcp.Description("Patient birthday in DD/MM/YYYY format; never used as the test date"),
		),
	)
	s.mcpServer.AddTool(ingestTool, s.handleIngest)

	resultsTool := mcp.NewTool(
		descriptions.ToolResults,
		mcp.WithDescription(descriptions.ResultsDescription),
		mcp.WithString("start_date",
			mcp.Required(),
			mcp.Description("First day of the range, YYYY-MM-DD"),
		),
		mcp.WithString("end_date",
			mcp.Required(),
			mcp.Description("Last day of the range, YYYY-MM-DD (inclusive)"),
		),
		mcp.WithString("test_names",
			mcp.Description("Optional comma-separated list of test names"),
		),
	)
	s.mcpServer.AddTool(resultsTool, s.handleResults)

	historyTool := mcp.NewTool(
		descriptions.ToolHistory,
		mcp.WithDescription(descriptions.HistoryDescription),
		mcp.WithString("test_name",
			mcp.Required(),
			mcp.Description("Test name as printed on the report"),
		),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of values (default %d)", storage.DefaultHistoryLimit)),
		),
	)
	s.mcpServer.AddTool(historyTool, s.handleHistory)

	deleteTool := mcp.NewTool(
		descriptions.ToolDeleteDate,
		mcp.WithDescription(descriptions.DeleteDateDescription),
		mcp.WithString("date",
			mcp.Required(),
			mcp.Description("Report date to delete, YYYY-MM-DD"),
		),
	)
	s.mcpServer.AddTool(deleteTool, s.handleDeleteDate)

	infoTool := mcp.NewTool(
		descriptions.ToolServerInfo,
		mcp.WithDescription(descriptions.ServerInfoDescription),
	)
	s.mcpServer.AddTool(infoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleIngest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	name, _ := args["name"].(string)
	birthday, _ := args["birthday"].(string)

	metadata, err := bloodwork.NewMetadata(name, birthday)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resolved, err := s.uploads.Resolve(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.ingester.IngestFile(ctx, resolved, metadata)
	if err != nil {
		return mcp.NewToolResultError(describeIngestError(err)), nil
	}

	return mcp.NewToolResultText(formatIngestResponse(resp)), nil
}

func (s *Server) handleResults(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	startArg, err := request.RequireString("start_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	endArg, err := request.RequireString("end_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	start, err := parseDate("start_date", startArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	end, err := parseDate("end_date", endArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if end.Before(start) {
		return mcp.NewToolResultError("end_date must not be before start_date"), nil
	}

	var testNames []string
	if raw, ok := request.GetArguments()["test_names"].(string); ok {
		testNames = splitNames(raw)
	}

	table, err := s.results.QueryResult(ctx, start, end, testNames)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}

	header := fmt.Sprintf("Results from %s to %s", startArg, endArg)
	if len(testNames) > 0 {
		header += fmt.Sprintf(" for %s", strings.Join(testNames, ", "))
	}
	return mcp.NewToolResultText(formatTable(header, table)), nil
}

func (s *Server) handleHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	testName, err := request.RequireString("test_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	testName = strings.TrimSpace(testName)
	if testName == "" {
		return mcp.NewToolResultError("test_name cannot be empty"), nil
	}

	limit := storage.DefaultHistoryLimit
	if v, ok := request.GetArguments()["limit"].(float64); ok && v > 0 {
		limit = int(v)
	}

	table, err := s.results.HistoryResult(ctx, testName, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}

	return mcp.NewToolResultText(formatTable(fmt.Sprintf("History of %s", testName), table)), nil
}

func (s *Server) handleDeleteDate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := request.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := parseDate("date", date); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !s.results.DeleteDate(ctx, date) {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete results for %s", date)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted all results for %s", date)), nil
}

func (s *Server) handleServerInfo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := "healthy"
	if err := s.results.Ping(ctx); err != nil {
		status = fmt.Sprintf("unhealthy (%v)", err)
	}

	text := fmt.Sprintf("📋 %s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("📁 Report Directory: %s\n", s.uploads.Root())
	text += fmt.Sprintf("📏 Max File Size: %d MB\n", s.config.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("🗄️  Storage: %s (measurement %s), %s\n\n", s.backend, s.config.Measurement, status)

	text += "🛠️  Available Tools:\n"
	for _, name := range descriptions.GetAllToolNames() {
		summary, _, _ := strings.Cut(descriptions.GetToolDescription(name), "\n")
		text += fmt.Sprintf("\n• %s\n  %s\n", name, summary)
	}

	return mcp.NewToolResultText(text), nil
}

// Run starts the MCP server in the configured mode and blocks until ctx is
// done or the transport fails.
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode serves MCP over stdin/stdout. Logs go to stderr.
func (s *Server) runStdioMode(ctx context.Context) error {
	mcpLogger.Debug("starting MCP server in stdio mode", "dir", s.uploads.Root())

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(mcpLogger.StandardLog())

	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over HTTP with server-sent events.
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	errCh := make(chan error, 1)
	go func() {
		mcpLogger.Info("starting MCP server in SSE mode", "addr", addr)
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve SSE: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sse.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down SSE server: %w", err)
		}
		return nil
	}
}
