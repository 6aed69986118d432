package cmd

import (
	"github.com/capcurve/capcurve/internal/contract"
	"github.com/capcurve/capcurve/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd runs the Model Context Protocol server over stdio.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server exposing scan and history tools over stdio.",
	Long: `Start a Model Context Protocol server on stdin/stdout so MCP clients
can trigger scans, poll scan status and read the convergence history.`,
	Example: `  capcurve mcp
  capcurve mcp --data-dir ~/capcurve`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		if store != nil {
			defer func() { _ = store.Close() }()
		}

		return mcp.StartMCPServer(rootCtx, cfg, contract.NewLocalGitClient(), store)
	},
}
