// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes chart tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/gantt/internal/apperr"
	"github.com/starford/gantt/internal/catalog"
	"github.com/starford/gantt/internal/generator"
	"github.com/starford/gantt/internal/storage"
)

// ConfigFormatURI is the resource holding the configuration contract.
const ConfigFormatURI = "gantt://config-format"

// Server wraps the MCP server with chart tools.
type Server struct {
	mcp     *server.MCPServer
	store   storage.Provider
	catalog catalog.Catalog
	gen     *generator.Generator
}

// New creates a new MCP server with all chart tools registered.
func New(store storage.Provider, cat catalog.Catalog, gen *generator.Generator) *Server {
	s := &Server{store: store, catalog: cat, gen: gen}

	s.mcp = server.NewMCPServer(
		"Gantt",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_charts",
		mcp.WithDescription("List charts recorded in the catalog, newest state per source file."),
		mcp.WithString("profile", mcp.Description("Optional profile name to filter by")),
		mcp.WithString("status", mcp.Description("Optional status filter: rendered or failed")),
	), s.listCharts)

	s.mcp.AddTool(mcp.NewTool("get_chart",
		mcp.WithDescription("Get the catalog record of one source export, including warnings and errors."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Workspace-relative path of the export (e.g. csv/plan.csv)")),
	), s.getChart)

	s.mcp.AddTool(mcp.NewTool("render_charts",
		mcp.WithDescription("Render every export in the workspace. Unchanged files are skipped unless force is set."),
		mcp.WithBoolean("force", mcp.Description("Re-render files whose inputs did not change")),
		mcp.WithString("only", mcp.Description("Optional comma-separated list of source paths to render")),
	), s.renderCharts)

	s.mcp.AddTool(mcp.NewTool("list_profiles",
		mcp.WithDescription("List the configured chart profiles and the directories they read and write."),
	), s.listProfiles)

	s.mcp.AddTool(mcp.NewTool("import_export",
		mcp.WithDescription("Download a CSV or XLSX issue export from a URL (http/https or base64 data URI) "+
			"into a profile's CSV directory and render it."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Source URL or data URI")),
		mcp.WithString("profile", mcp.Required(), mcp.Description("Profile that should render the export")),
		mcp.WithString("filename", mcp.Description("Optional file name; derived from the URL when empty")),
	), s.importExport)

	s.mcp.AddTool(mcp.NewTool("get_config_contract",
		mcp.WithDescription("Returns the chart configuration document format. "+
			"Call this before writing or editing a configuration file."),
	), s.getConfigContract)

	s.mcp.AddResource(
		mcp.NewResource(ConfigFormatURI, "Chart Configuration Format",
			mcp.WithResourceDescription("Keys, defaults and operators of a chart configuration document."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readConfigFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listCharts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, total, err := s.catalog.ListCharts(req.GetString("profile", ""), req.GetString("status", ""), 0, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if total == 0 {
		return mcp.NewToolResultText("no charts recorded"), nil
	}
	return jsonResult(records), nil
}

func (s *Server) getChart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.catalog.GetChart(path)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rec), nil
}

func (s *Server) renderCharts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := generator.BatchOptions{Force: req.GetBool("force", false)}
	for _, p := range strings.Split(req.GetString("only", ""), ",") {
		if p = strings.TrimSpace(p); p != "" {
			opts.Only = append(opts.Only, p)
		}
	}
	sum, err := s.gen.Batch(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(sum), nil
}

type profileInfo struct {
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
	Config string `json:"config"`
	CSV    string `json:"csv_directory"`
	Target string `json:"target_directory"`
}

func (s *Server) listProfiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var out []profileInfo
	for _, p := range s.gen.Dispatcher().Profiles() {
		out = append(out, profileInfo{
			Name:   p.Name,
			Prefix: p.Prefix,
			Config: p.ConfigPath,
			CSV:    p.Config.CSVDirectory,
			Target: p.Config.TargetDirectory,
		})
	}
	return jsonResult(out), nil
}

func (s *Server) getConfigContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ConfigFormatContract), nil
}

func (s *Server) readConfigFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ConfigFormatURI,
			MIMEType: "text/markdown",
			Text:     ConfigFormatContract,
		},
	}, nil
}
