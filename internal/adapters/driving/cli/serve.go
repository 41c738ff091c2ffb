package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/artisnova/aria/internal/adapters/driving/httpapi"
	"github.com/artisnova/aria/internal/core/services"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API for the media-player UI",
	Long: `Starts the HTTP API and the cache sweeper, and blocks until
interrupted. The UI queries /api/v1 whenever now-playing metadata
changes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweepInterval := app.config.GetDuration("cache.sweep_interval")
	if sweepInterval <= 0 {
		sweepInterval = services.DefaultSweepInterval
	}
	sweeper := services.NewSweeper(app.cache, sweepInterval)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	server := httpapi.NewServer(app.metadata, app.corrections, app.registry)
	return server.ListenAndServe(ctx, serveAddr)
}
