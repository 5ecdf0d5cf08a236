package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/repolens/internal/contract"
	"github.com/huangsam/repolens/internal/server"
	"github.com/spf13/cobra"
)

// serveCmd starts the HTTP JSON API used by the dashboard.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP JSON API",
	Long: `Serve every analytic as JSON under /api for browser dashboards.

Read requests may pass their own token in the Authorization header,
otherwise the configured token is used. Contents updates always need the
caller's own token. Only localhost pages may call the API unless
--allowed-origin is set.

Examples:
  repolens serve --addr 127.0.0.1:8080 --allowed-origin https://lens.example.com`,
	Args:    cobra.NoArgs,
	PreRunE: serviceSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(cfg, cacheManager, *contract.Logger())
		if err := srv.ListenAndServe(ctx); err != nil {
			contract.LogFatal("Server stopped", err)
		}
	},
}
