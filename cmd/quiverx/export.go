package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alanyoungcy/quiverx/internal/app"
	"github.com/alanyoungcy/quiverx/internal/config"
	"github.com/alanyoungcy/quiverx/internal/render"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Upload one dashboard snapshot to object storage",
		Long: `Upload one dashboard snapshot to object storage.

With --list nothing is uploaded; the snapshots already under
<export.prefix>/snapshots are printed newest first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, app.Requirements{S3: true}, func(ctx context.Context, _ *config.Config, a *app.App) error {
				if list {
					infos, err := a.Snapshots(ctx)
					if err != nil {
						return err
					}
					return render.Snapshots(cmd.OutOrStdout(), infos)
				}
				exporter := a.Exporter()
				if exporter == nil {
					return errors.New("export: object storage is not configured")
				}
				res, err := exporter.Export(ctx)
				if err != nil {
					return err
				}
				for _, key := range res.Keys {
					fmt.Fprintln(cmd.OutOrStdout(), key)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list exported snapshots instead of uploading one")
	return cmd
}
