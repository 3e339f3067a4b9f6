package main

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/alanyoungcy/quiverx/internal/app"
	"github.com/alanyoungcy/quiverx/internal/config"
	"github.com/alanyoungcy/quiverx/internal/ranking"
	"github.com/alanyoungcy/quiverx/internal/render"
)

func newRankCmd(opts *rootOptions) *cobra.Command {
	var (
		sortBy string
		order  string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Print ranked arbitrage opportunities",
		Long: `Print the opportunity table ranked by spread or profit potential.

Examples:
  quiverx rank
  quiverx rank --sort profit --order asc
  quiverx rank --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := ranking.ParseSortKey(sortBy)
			if err != nil {
				return err
			}
			dir, err := ranking.ParseDirection(order)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, app.Requirements{}, func(ctx context.Context, _ *config.Config, a *app.App) error {
				v, err := a.Service().Arbitrage(ctx, ranking.SortState{Key: key, Direction: dir})
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(v)
				}
				return render.Arbitrage(cmd.OutOrStdout(), v)
			})
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", string(ranking.SortBySpread), "sort column: spread or profit")
	cmd.Flags().StringVar(&order, "order", string(ranking.Descending), "sort direction: asc or desc")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
