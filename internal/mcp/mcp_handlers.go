package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/capcurve/capcurve/core"
	"github.com/capcurve/capcurve/internal/contract"
	"github.com/capcurve/capcurve/schema"
)

// defaultHistoryLimit bounds convergence_history when the caller does
// not ask for a specific count.
const defaultHistoryLimit = 10

// scanFunc matches core.Run and is swapped out in tests.
type scanFunc func(ctx context.Context, cfg *contract.Config, client contract.GitClient, store contract.HistoryStore) (*schema.Report, error)

// toolHandler holds common dependencies for MCP tool handlers. Scans
// triggered over MCP follow the same single-flight rule as the HTTP
// server: one at a time, concurrent triggers rejected.
type toolHandler struct {
	baseCfg *contract.Config
	client  contract.GitClient
	store   contract.HistoryStore
	scan    scanFunc

	mu      sync.Mutex
	running bool
}

func (h *toolHandler) handleScanTrigger(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return mcp.NewToolResultError("a scan is already running"), nil
	}
	h.running = true
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		h.running = false
		h.mu.Unlock()
	}()

	// Progress output must stay off stdout, which carries the protocol
	// stream.
	cfg := *h.baseCfg
	cfg.Out = os.Stderr
	report, err := h.scan(ctx, &cfg, h.client, h.store)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}

	summary := map[string]any{
		"repos_scanned":    report.ReposScanned,
		"total_commits":    report.TotalCommits,
		"total_capability": report.Current.TotalCapability,
		"pct_of_asymptote": report.Current.PctOfAsymptote,
		"convergence_date": report.Models.ConvergenceDate,
	}
	jsonData, _ := json.MarshalIndent(summary, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleScanStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	running := h.running
	h.mu.Unlock()

	status := map[string]any{
		"scan_running":  running,
		"last_scan":     nil,
		"total_commits": nil,
	}
	data, err := os.ReadFile(filepath.Join(h.baseCfg.DataDir, schema.DataFileName))
	if err == nil {
		var report schema.Report
		if err := json.Unmarshal(data, &report); err == nil {
			status["last_scan"] = report.Generated
			status["total_commits"] = report.TotalCommits
		}
	}

	jsonData, _ := json.MarshalIndent(status, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleConvergenceHistory(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("last", defaultHistoryLimit)
	if limit < 1 {
		return mcp.NewToolResultError(fmt.Sprintf("last must be at least 1 (received %d)", limit)), nil
	}

	history := core.LoadHistory(filepath.Join(h.baseCfg.DataDir, schema.HistoryFileName))
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	if history == nil {
		history = []schema.HistoryEntry{}
	}

	jsonData, _ := json.MarshalIndent(history, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
