package cmd

import (
	"fmt"

	"github.com/capcurve/capcurve/internal/contract"
	"github.com/capcurve/capcurve/internal/webserve"
	"github.com/spf13/cobra"
)

// serveCmd runs the dashboard and scan-trigger HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard and the scan trigger API over HTTP.",
	Long: `Start an HTTP server exposing the dashboard static files plus a small
JSON API: trigger a scan, poll its status, read the captured run log and
read or update the scan settings.

Only one scan runs at a time; a trigger while a run is in flight
returns 409.`,
	Example: `  capcurve serve
  capcurve serve --port 9090 --static-dir ./dashboard`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := openHistoryStore()
		if err != nil {
			return err
		}
		if store != nil {
			defer func() { _ = store.Close() }()
		}

		srv := webserve.New(cfg, contract.NewLocalGitClient(), store)
		fmt.Printf("Serving on http://%s:%d (data dir %s)\n", cfg.Host, cfg.Port, cfg.DataDir)
		return srv.ListenAndServe(rootCtx)
	},
}
