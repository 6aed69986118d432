// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/capcurve/capcurve/core"
	"github.com/capcurve/capcurve/internal/contract"
)

// NewMCPServer initializes and configures the capcurve MCP server
// without starting it. Exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, client contract.GitClient, store contract.HistoryStore) *server.MCPServer {
	s := server.NewMCPServer(
		"Capability Curve Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		client:  client,
		store:   store,
		scan:    core.Run,
	}

	// --- 1. Tool: scan_trigger ---
	s.AddTool(mcp.NewTool("scan_trigger",
		mcp.WithDescription("Run a full capability scan over the configured repositories and return the headline figures. Only one scan runs at a time."),
	), h.handleScanTrigger)

	// --- 2. Tool: scan_status ---
	s.AddTool(mcp.NewTool("scan_status",
		mcp.WithDescription("Report whether a scan is running plus the time and commit count of the latest completed scan."),
	), h.handleScanStatus)

	// --- 3. Tool: convergence_history ---
	s.AddTool(mcp.NewTool("convergence_history",
		mcp.WithDescription("Return the most recent convergence snapshots recorded after scans."),
		mcp.WithNumber("last", mcp.Description("Number of snapshots to return, newest last. Defaults to 10.")),
	), h.handleConvergenceHistory)

	return s
}

// StartMCPServer starts the capcurve MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, client contract.GitClient, store contract.HistoryStore) error {
	s := NewMCPServer(baseCfg, client, store)
	return server.ServeStdio(s)
}
