package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alanyoungcy/quiverx/internal/app"
	"github.com/alanyoungcy/quiverx/internal/config"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API, WebSocket hub and snapshot refresher",
		Long: `Run the dashboard API, WebSocket hub and snapshot refresher until
interrupted.

Examples:
  quiverx serve
  quiverx serve --config config.toml
  QUIVERX_SOURCE_KIND=postgres QUIVERX_SUPABASE_DSN=postgres://... quiverx serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, app.Requirements{}, func(ctx context.Context, cfg *config.Config, a *app.App) error {
				slog.InfoContext(ctx, "active configuration", slog.Any("config", config.RedactedConfig(cfg)))
				if err := a.Serve(ctx); err != nil {
					return err
				}
				slog.InfoContext(ctx, "dashboard stopped")
				return nil
			})
		},
	}
}
