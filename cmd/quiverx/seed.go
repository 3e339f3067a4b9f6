package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alanyoungcy/quiverx/internal/app"
	"github.com/alanyoungcy/quiverx/internal/config"
	"github.com/alanyoungcy/quiverx/internal/domain"
	"github.com/alanyoungcy/quiverx/internal/source"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a dataset into Postgres",
		Long: `Replace the Postgres dataset with the built-in research sample, or with
a YAML/JSON document.

Examples:
  quiverx seed
  quiverx seed --file dataset.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var from domain.DataSource = source.NewSample()
			if file != "" {
				from = source.NewFile(file)
			}
			return withApp(cmd, opts, app.Requirements{Postgres: true}, func(ctx context.Context, _ *config.Config, a *app.App) error {
				res, err := a.Seed(ctx, from)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d opportunities and %d days from %s\n", res.Opportunities, res.Days, res.Source)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "dataset document to seed (defaults to the built-in sample)")
	return cmd
}
